package warnings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/model"
	"github.com/mbolis/quick-survey-engine/warnings"
)

func index(t *testing.T, doc string) *definition.Index {
	t.Helper()
	root, err := definition.ParseNode([]byte(doc))
	require.NoError(t, err)
	return definition.NewIndex(root)
}

type finding struct {
	Kind       warnings.Kind
	QuestionID string
}

func findings(ws []warnings.Warning) []finding {
	out := []finding{}
	for _, w := range ws {
		out = append(out, finding{w.Kind, w.QuestionID})
	}
	return out
}

func TestMissingRequiredOnEmptyResponse(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "question", "questionId": "q1", "category": "text", "refusable": false}
	]}`)

	ws := warnings.ForResponse(idx, model.Response{})
	assert.Equal(t, []finding{{warnings.MissingRequired, "q1"}}, findings(ws))
	assert.True(t, warnings.Blocking(ws))
}

func TestStaleAnswerReportedOnce(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "question", "questionId": "q1", "category": "text"}
	]}`)
	resp := model.Response{Answers: []model.Answer{
		{Question: "q1", Value: "x"},
		{Question: "q_removed", Value: "y"},
	}}

	ws := warnings.ForResponse(idx, resp)
	assert.Equal(t, []finding{{warnings.StaleAnswer, "q_removed"}}, findings(ws))
	assert.False(t, warnings.Blocking(ws))
	assert.Len(t, resp.Answers, 2)
}

func TestMissingRequiredAtAnyDepth(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "section", "items": [
			{"type": "section", "items": [
				{"type": "question", "questionId": "deep", "category": "text"}
			]}
		]},
		{"type": "question", "questionId": "optional", "category": "text", "refusable": true},
		{"type": "question", "questionId": "shallow", "category": "text"}
	]}`)

	ws := warnings.ForFormValues(idx, model.FormValues{"shallow": ""})
	assert.Equal(t, []finding{
		{warnings.MissingRequired, "deep"},
		{warnings.MissingRequired, "shallow"},
	}, findings(ws))
}

func TestTypeMismatch(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "question", "questionId": "color", "title": "Color", "category": "choice", "options": ["red", "blue"]},
		{"type": "question", "questionId": "pet", "category": "choice", "options": ["cat"], "other": true},
		{"type": "question", "questionId": "tags", "category": "choice", "options": ["a", "b"]},
		{"type": "question", "questionId": "count", "category": "select", "options": ["1", "2"]},
		{"type": "question", "questionId": "name", "category": "text"}
	]}`)
	resp := model.Response{Answers: []model.Answer{
		{Question: "name", Value: []any{"not", "text"}},
		{Question: "tags", Value: []any{"a", "c"}},
		{Question: "color", Value: "green"},
		{Question: "pet", Value: "lizard"},
		{Question: "count", Value: float64(2)},
	}}

	ws := warnings.ForResponse(idx, resp)
	assert.Equal(t, []finding{
		{warnings.TypeMismatch, "color"},
		{warnings.TypeMismatch, "tags"},
		{warnings.TypeMismatch, "name"},
	}, findings(ws))
	assert.Equal(t, `"Color": "green" is not one of the options`, ws[0].Message)
	assert.Equal(t, `"c" is not one of the options`, ws[1].Message[len(`question "tags": `):])
}

func TestWarningOrder(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "question", "questionId": "q1", "category": "text"},
		{"type": "question", "questionId": "q2", "category": "choice", "options": ["a"]}
	]}`)
	resp := model.Response{Answers: []model.Answer{
		{Question: "z_old", Value: "1"},
		{Question: "q2", Value: "b"},
		{Question: "a_old", Value: "2"},
	}}

	assert.Equal(t, []finding{
		{warnings.MissingRequired, "q1"},
		{warnings.TypeMismatch, "q2"},
		{warnings.StaleAnswer, "z_old"},
		{warnings.StaleAnswer, "a_old"},
	}, findings(warnings.ForResponse(idx, resp)))
}

func TestFormValuesOrphans(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "question", "id": "k1", "questionId": "q1", "category": "text", "refusable": true}
	]}`)
	values := model.FormValues{
		"k1":              "x",
		"zeta":            "1",
		"alpha":           "2",
		model.SurveyIDKey: 4,
	}

	ws := warnings.ForFormValues(idx, values)
	assert.Equal(t, []finding{
		{warnings.StaleAnswer, "alpha"},
		{warnings.StaleAnswer, "zeta"},
	}, findings(ws))
	assert.Len(t, values, 4)
}

func TestNoWarnings(t *testing.T) {
	idx := index(t, `{"type": "section", "title": "empty"}`)
	assert.Empty(t, warnings.ForResponse(idx, model.Response{}))
	assert.NotNil(t, warnings.ForFormValues(idx, nil))
}
