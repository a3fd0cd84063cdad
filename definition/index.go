package definition

import (
	"fmt"

	"github.com/mbolis/quick-survey-engine/model"
)

// Index is a lookup table over the nodes of one tree. Build it once per
// loaded definition; it is read-only afterwards.
type Index struct {
	root      model.Node
	questions []*model.Question
	byID      map[string]*model.Question
	byKey     map[string]*model.Question
	nodes     map[string]model.Node
	keys      map[model.Node]string
}

func NewIndex(root model.Node) *Index {
	idx := &Index{
		root:  root,
		byID:  map[string]*model.Question{},
		byKey: map[string]*model.Question{},
		nodes: map[string]model.Node{},
		keys:  map[model.Node]string{},
	}
	idx.add(root, "definition")
	return idx
}

// add indexes n in pre-order. Sections without an id are keyed by their
// path, so every node has a props bag of its own.
func (idx *Index) add(n model.Node, path string) {
	switch node := n.(type) {
	case *model.Question:
		if node == nil {
			return
		}
		idx.questions = append(idx.questions, node)
		if _, ok := idx.byID[node.QuestionID]; !ok {
			idx.byID[node.QuestionID] = node
		}
		if _, ok := idx.byKey[node.Key()]; !ok {
			idx.byKey[node.Key()] = node
		}
		idx.bind(node, node.Key())
	case *model.Section:
		if node == nil {
			return
		}
		key := node.Key()
		if _, taken := idx.nodes[key]; key == "" || taken {
			key = path
		}
		idx.bind(node, key)
		for i, child := range node.Items {
			idx.add(child, fmt.Sprintf("%s.items[%d]", path, i))
		}
	}
}

func (idx *Index) bind(n model.Node, key string) {
	idx.keys[n] = key
	if _, ok := idx.nodes[key]; !ok {
		idx.nodes[key] = n
	}
}

func (idx *Index) Root() model.Node {
	return idx.root
}

// Questions returns the flattened questions in document order. The
// slice is shared; callers must not modify it.
func (idx *Index) Questions() []*model.Question {
	return idx.questions
}

func (idx *Index) Len() int {
	return len(idx.questions)
}

func (idx *Index) ByQuestionID(id string) (*model.Question, bool) {
	q, ok := idx.byID[id]
	return q, ok
}

// ByKey looks a question up by the key its value has in FormValues.
func (idx *Index) ByKey(key string) (*model.Question, bool) {
	q, ok := idx.byKey[key]
	return q, ok
}

// Key returns the key n has in the form state: its id, the questionId of
// a question without one, or the path of a section without one.
func (idx *Index) Key(n model.Node) string {
	return idx.keys[n]
}

// Node looks up any node, section or question, by its key.
func (idx *Index) Node(key string) (model.Node, bool) {
	n, ok := idx.nodes[key]
	return n, ok
}
