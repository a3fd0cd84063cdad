package model

import (
	json "github.com/goccy/go-json"
)

type Kind string

const (
	KindSection  Kind = "section"
	KindQuestion Kind = "question"
)

type Category string

const (
	CategoryText   Category = "text"
	CategoryChoice Category = "choice"
	CategorySelect Category = "select"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryText, CategoryChoice, CategorySelect:
		return true
	}
	return false
}

// RequiresOptions reports whether questions of this category must list
// their options.
func (c Category) RequiresOptions() bool {
	switch c {
	case CategoryChoice, CategorySelect:
		return true
	}
	return false
}

// Node is either a *Section or a *Question.
type Node interface {
	Kind() Kind
	// Key is the id the document gives the node, or for a question
	// without one its questionId.
	Key() string
	isNode()
}

type Section struct {
	ID    string
	Title string
	Items []Node
}

func (*Section) Kind() Kind { return KindSection }
func (s *Section) Key() string { return s.ID }
func (*Section) isNode() {}

func (s *Section) MarshalJSON() ([]byte, error) {
	items := s.Items
	if items == nil {
		items = []Node{}
	}
	return json.Marshal(struct {
		Type  Kind   `json:"type"`
		ID    string `json:"id,omitempty"`
		Title string `json:"title"`
		Items []Node `json:"items"`
	}{KindSection, s.ID, s.Title, items})
}

type Question struct {
	ID         string
	QuestionID string
	Title      string
	Text       string
	Category   Category
	Options    []string
	Other      bool
	Refusable  bool
	IsPublic   bool
}

func (*Question) Kind() Kind { return KindQuestion }

// Key falls back to the questionId when the definition gives the item no id.
func (q *Question) Key() string {
	if q.ID != "" {
		return q.ID
	}
	return q.QuestionID
}

func (*Question) isNode() {}

// HasOption reports whether opt is one of the declared options.
func (q *Question) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

func (q *Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       Kind     `json:"type"`
		ID         string   `json:"id,omitempty"`
		QuestionID string   `json:"questionId"`
		Title      string   `json:"title"`
		Text       string   `json:"text,omitempty"`
		Category   Category `json:"category"`
		Options    []string `json:"options,omitempty"`
		Other      bool     `json:"other,omitempty"`
		Refusable  bool     `json:"refusable"`
		IsPublic   bool     `json:"is_public"`
	}{KindQuestion, q.ID, q.QuestionID, q.Title, q.Text, q.Category, q.Options, q.Other, q.Refusable, q.IsPublic})
}
