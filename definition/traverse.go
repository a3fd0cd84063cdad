package definition

import (
	"errors"

	"github.com/mbolis/quick-survey-engine/model"
)

// SkipChildren may be returned by a WalkFunc visiting a section to
// leave its items out of the walk.
var SkipChildren = errors.New("skip children")

type WalkFunc func(n model.Node, depth int) error

// Walk visits root and its descendants in pre-order.
func Walk(root model.Node, fn WalkFunc) error {
	err := walk(root, 0, fn)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	return err
}

func walk(n model.Node, depth int, fn WalkFunc) error {
	switch node := n.(type) {
	case nil:
		return nil
	case *model.Question:
		if node == nil {
			return nil
		}
		return fn(node, depth)
	case *model.Section:
		if node == nil {
			return nil
		}
		if err := fn(node, depth); err != nil {
			if errors.Is(err, SkipChildren) {
				return nil
			}
			return err
		}
		for _, child := range node.Items {
			if err := walk(child, depth+1, fn); err != nil {
				return err
			}
		}
		return nil
	default:
		panic("definition: unknown node type")
	}
}

// Flatten returns the questions under root in document order.
func Flatten(root model.Node) []*model.Question {
	var out []*model.Question
	Walk(root, func(n model.Node, _ int) error {
		if q, ok := n.(*model.Question); ok {
			out = append(out, q)
		}
		return nil
	})
	return out
}

// Find returns the first question in document order with the given
// questionId. A missing question is a normal outcome, not an error.
func Find(questionID string, root model.Node) (*model.Question, bool) {
	var found *model.Question
	Walk(root, func(n model.Node, _ int) error {
		if q, ok := n.(*model.Question); ok && q.QuestionID == questionID {
			found = q
			return errStop
		}
		return nil
	})
	return found, found != nil
}

var errStop = errors.New("stop")
