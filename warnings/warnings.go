// Package warnings inspects a definition together with a response, or
// with the form values being edited, and reports what is incomplete or
// inconsistent. Nothing here mutates its inputs or fails: every finding
// is a Warning.
package warnings

import (
	"fmt"
	"sort"

	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/mapper"
	"github.com/mbolis/quick-survey-engine/model"
)

type Kind string

const (
	MissingRequired Kind = "missing_required"
	StaleAnswer     Kind = "stale_answer"
	TypeMismatch    Kind = "type_mismatch"
)

type Warning struct {
	Kind       Kind   `json:"kind"`
	QuestionID string `json:"question"`
	Key        string `json:"key,omitempty"`
	Message    string `json:"message"`
}

func (w Warning) String() string {
	return w.Message
}

// ForResponse checks a persisted response against the indexed tree.
func ForResponse(idx *definition.Index, resp model.Response) []Warning {
	ws := inTree(idx, mapper.ResponseToFormValues(resp, idx))
	for _, a := range resp.Answers {
		if _, ok := idx.ByQuestionID(a.Question); !ok {
			ws = append(ws, stale(a.Question, ""))
		}
	}
	return ws
}

// ForFormValues checks the values of an editing session. Keys that match
// no question are reported in sorted order; the survey selection key is
// not a question and is skipped.
func ForFormValues(idx *definition.Index, values model.FormValues) []Warning {
	ws := inTree(idx, values)

	var orphans []string
	for key := range values {
		if key == model.SurveyIDKey {
			continue
		}
		if _, ok := idx.ByKey(key); !ok {
			orphans = append(orphans, key)
		}
	}
	sort.Strings(orphans)
	for _, key := range orphans {
		ws = append(ws, stale(key, key))
	}
	return ws
}

// Blocking reports whether ws holds a warning a caller may refuse to
// submit with.
func Blocking(ws []Warning) bool {
	for _, w := range ws {
		if w.Kind == MissingRequired {
			return true
		}
	}
	return false
}

func inTree(idx *definition.Index, values model.FormValues) []Warning {
	ws := []Warning{}
	for _, q := range idx.Questions() {
		v, ok := values[q.Key()]
		if !ok || mapper.IsEmpty(v) {
			if !q.Refusable {
				ws = append(ws, Warning{
					Kind:       MissingRequired,
					QuestionID: q.QuestionID,
					Key:        q.Key(),
					Message:    fmt.Sprintf("%s: an answer is required", label(q)),
				})
			}
			continue
		}
		if msg := mismatch(q, v); msg != "" {
			ws = append(ws, Warning{
				Kind:       TypeMismatch,
				QuestionID: q.QuestionID,
				Key:        q.Key(),
				Message:    fmt.Sprintf("%s: %s", label(q), msg),
			})
		}
	}
	return ws
}

func stale(questionID, key string) Warning {
	return Warning{
		Kind:       StaleAnswer,
		QuestionID: questionID,
		Key:        key,
		Message:    fmt.Sprintf("answer to %q refers to a question that is no longer in the survey", questionID),
	}
}

func label(q *model.Question) string {
	if q.Title != "" {
		return fmt.Sprintf("%q", q.Title)
	}
	return fmt.Sprintf("question %q", q.QuestionID)
}

// mismatch describes why v does not fit q, or returns "".
func mismatch(q *model.Question, v any) string {
	switch q.Category {
	case model.CategoryText:
		switch v.(type) {
		case []any, []string, map[string]any:
			return "expected a single text value"
		}
	case model.CategoryChoice, model.CategorySelect:
		if q.Other {
			return ""
		}
		for _, choice := range choices(v) {
			var s string
			switch c := choice.(type) {
			case string:
				s = c
			case float64, int, bool:
				s = fmt.Sprint(c)
			default:
				return "expected one of the options"
			}
			if !q.HasOption(s) {
				return fmt.Sprintf("%q is not one of the options", s)
			}
		}
	}
	return ""
}

func choices(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}
