package definition

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/mbolis/quick-survey-engine/log"
	"github.com/mbolis/quick-survey-engine/model"
)

type rawDocument struct {
	ID         int      `json:"id"`
	Version    int      `json:"version"`
	Name       string   `json:"name"`
	Definition *rawNode `json:"definition"`
}

type rawNode struct {
	Type       *string         `json:"type"`
	ID         any             `json:"id"`
	Title      string          `json:"title"`
	Text       string          `json:"text"`
	Items      []rawNode       `json:"items"`
	QuestionID any             `json:"questionId"`
	Category   string          `json:"category"`
	Options    json.RawMessage `json:"options"`
	Other      bool            `json:"other"`
	Refusable  bool            `json:"refusable"`
	IsPublic   bool            `json:"is_public"`
}

// Parse reads a definition document ({id, name, definition}) and returns
// the survey with a validated, de-duplicated tree.
func Parse(raw []byte) (*model.Survey, error) {
	var doc rawDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, malformed(&NodeError{Path: "document", Msg: err.Error()})
	}
	if doc.Definition == nil {
		return nil, malformed(&NodeError{Path: "definition", Msg: "missing"})
	}

	root, err := build(doc.Definition)
	if err != nil {
		return nil, err
	}

	return &model.Survey{
		ID:         doc.ID,
		Version:    doc.Version,
		Name:       doc.Name,
		Definition: root,
	}, nil
}

// ParseYAML reads the same document as Parse, written in YAML.
func ParseYAML(raw []byte) (*model.Survey, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, malformed(&NodeError{Path: "document", Msg: err.Error()})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, malformed(&NodeError{Path: "document", Msg: err.Error()})
	}
	return Parse(data)
}

// ParseNode reads a bare node, without the document envelope.
func ParseNode(raw []byte) (model.Node, error) {
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, malformed(&NodeError{Path: "definition", Msg: err.Error()})
	}
	return build(&n)
}

func malformed(errs ...error) error {
	return &MalformedDefinitionError{Problems: multierror.Append(nil, errs...)}
}

type builder struct {
	problems    *multierror.Error
	questionIDs map[string]string
	keys        map[string]string
}

func build(n *rawNode) (model.Node, error) {
	b := &builder{
		questionIDs: map[string]string{},
		keys:        map[string]string{},
	}
	root := b.node(n, "definition")
	if b.problems != nil {
		return nil, &MalformedDefinitionError{Problems: b.problems}
	}
	return root, nil
}

func (b *builder) fail(path, msg string, args ...any) {
	b.problems = multierror.Append(b.problems, &NodeError{Path: path, Msg: fmt.Sprintf(msg, args...)})
}

func (b *builder) node(n *rawNode, path string) model.Node {
	if n.Type == nil || *n.Type == "" {
		b.fail(path, "missing node type")
		return nil
	}

	switch model.Kind(*n.Type) {
	case model.KindSection:
		return b.section(n, path)
	case model.KindQuestion:
		return b.question(n, path)
	default:
		b.fail(path, "unknown node type %q", *n.Type)
		return nil
	}
}

func (b *builder) section(n *rawNode, path string) *model.Section {
	s := &model.Section{
		ID:    identifier(n.ID),
		Title: n.Title,
		Items: make([]model.Node, 0, len(n.Items)),
	}
	if s.ID != "" {
		b.claim(s.ID, path)
	}

	for i := range n.Items {
		child := b.node(&n.Items[i], fmt.Sprintf("%s.items[%d]", path, i))
		if child == nil {
			continue
		}
		s.Items = append(s.Items, child)
	}
	return s
}

func (b *builder) question(n *rawNode, path string) model.Node {
	q := &model.Question{
		ID:         identifier(n.ID),
		QuestionID: identifier(n.QuestionID),
		Title:      n.Title,
		Text:       n.Text,
		Category:   model.Category(n.Category),
		Other:      n.Other,
		Refusable:  n.Refusable,
		IsPublic:   n.IsPublic,
	}

	ok := true
	if q.QuestionID == "" {
		b.fail(path, "question has no questionId")
		ok = false
	}
	if !q.Category.Valid() {
		b.fail(path, "unknown question category %q", n.Category)
		ok = false
	}

	opts, err := options(n.Options)
	if err != nil {
		b.fail(path, "invalid options: %s", err)
		ok = false
	}
	q.Options = opts
	if q.Category.RequiresOptions() && len(q.Options) == 0 {
		b.fail(path, "%s question has no options", q.Category)
		ok = false
	}
	if q.QuestionID == model.SurveyIDKey {
		b.fail(path, "questionId %q is reserved", q.QuestionID)
		ok = false
	}

	if !ok {
		return nil
	}

	if first, dup := b.questionIDs[q.QuestionID]; dup {
		log.Warnf("definition: dropping %s, questionId %q already used at %s", path, q.QuestionID, first)
		return nil
	}
	if !b.claim(q.Key(), path) {
		return nil
	}
	b.questionIDs[q.QuestionID] = path

	return q
}

// claim registers key as the form key of the node at path.
func (b *builder) claim(key, path string) bool {
	if key == model.SurveyIDKey {
		b.fail(path, "key %q is reserved", key)
		return false
	}
	if first, taken := b.keys[key]; taken {
		b.fail(path, "key %q already used at %s", key, first)
		return false
	}
	b.keys[key] = path
	return true
}

// identifier normalises ids that documents write as either strings or numbers.
func identifier(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

// options accepts either a list or a newline separated string, the form
// the question editor stores.
func options(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		var out []string
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out, nil
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("expected a list or a string")
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		switch v.(type) {
		case string, float64, bool:
			out = append(out, identifier(v))
		default:
			return nil, fmt.Errorf("option %v is not a scalar", v)
		}
	}
	return out, nil
}
