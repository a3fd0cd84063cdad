// Package mapper converts between persisted answers, which are keyed by
// questionId, and the form values an editing session works on, which are
// keyed by each question's form key.
package mapper

import (
	"reflect"

	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/model"
)

// ResponseToFormValues projects the answers of resp onto the questions of
// the indexed tree. Answers whose question is no longer in the tree are
// left out of the result; resp itself is never modified.
func ResponseToFormValues(resp model.Response, idx *definition.Index) model.FormValues {
	values := make(model.FormValues, len(resp.Answers))
	for _, a := range resp.Answers {
		q, ok := idx.ByQuestionID(a.Question)
		if !ok {
			continue
		}
		values[q.Key()] = a.Value
	}
	return values
}

// FormValuesToAnswers walks the questions in document order and emits an
// answer for each one holding a non-empty value. Unanswered questions are
// omitted whatever their refusable flag says, and the survey pseudo-key
// never becomes an answer.
func FormValuesToAnswers(values model.FormValues, idx *definition.Index) []model.Answer {
	answers := []model.Answer{}
	for _, q := range idx.Questions() {
		if q.Key() == model.SurveyIDKey {
			continue
		}
		v, ok := values[q.Key()]
		if !ok || IsEmpty(v) {
			continue
		}
		answers = append(answers, model.Answer{Question: q.QuestionID, Value: v})
	}
	return answers
}

// Submission builds the payload a save action persists.
func Submission(values model.FormValues, idx *definition.Index, surveyID int, respondent model.Respondent) model.Response {
	return model.Response{
		Survey:     surveyID,
		Respondent: respondent,
		Answers:    FormValuesToAnswers(values, idx),
	}
}

// Stale returns the answers of resp that reference questions missing from
// the indexed tree, in their original order.
func Stale(resp model.Response, idx *definition.Index) []model.Answer {
	var stale []model.Answer
	for _, a := range resp.Answers {
		if _, ok := idx.ByQuestionID(a.Question); !ok {
			stale = append(stale, a)
		}
	}
	return stale
}

// IsEmpty reports whether v counts as no answer: nil, the empty string,
// or an empty list or object.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
