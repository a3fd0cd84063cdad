// Package form is the contract between the engine and a presentation
// layer. A renderer walks the definition tree with Render and talks to
// the form state only through a Controller, so the values it edits stay
// keyed the way the mapper expects.
package form

import (
	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/model"
)

// Props is per-node configuration derived by the presentation layer,
// such as whether a control is visible or enabled. It is independent of
// the node's value.
type Props map[string]any

type State struct {
	Values model.FormValues
	Props  map[string]Props
}

// Controller owns the form state of one editing session.
type Controller interface {
	Value(key string) any
	Props(key string) Props
	OnValueChange(key string, value any) error
	OnPropsChange(key string, props Props) error
}

// Visitor receives the nodes of a tree in document order.
type Visitor interface {
	Section(s *model.Section, props Props, depth int) error
	Question(q *model.Question, value any, props Props, depth int) error
}

// Render drives v over every node of the indexed tree, passing the
// current value and props each node has in ctrl. A Visitor may return
// definition.SkipChildren from Section to leave a section's items out.
func Render(idx *definition.Index, ctrl Controller, v Visitor) error {
	return definition.Walk(idx.Root(), func(n model.Node, depth int) error {
		key := idx.Key(n)
		switch node := n.(type) {
		case *model.Section:
			return v.Section(node, ctrl.Props(key), depth)
		case *model.Question:
			return v.Question(node, ctrl.Value(key), ctrl.Props(key), depth)
		}
		return nil
	})
}
