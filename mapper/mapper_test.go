package mapper_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/mapper"
	"github.com/mbolis/quick-survey-engine/model"
)

func index(t *testing.T, doc string) *definition.Index {
	t.Helper()
	root, err := definition.ParseNode([]byte(doc))
	require.NoError(t, err)
	return definition.NewIndex(root)
}

func TestChoiceRoundTrip(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "question", "questionId": "q1", "category": "choice", "options": ["a", "b"]}
	]}`)
	resp := model.Response{Answers: []model.Answer{{Question: "q1", Value: "a"}}}

	values := mapper.ResponseToFormValues(resp, idx)
	assert.Equal(t, model.FormValues{"q1": "a"}, values)
	assert.Equal(t, []model.Answer{{Question: "q1", Value: "a"}}, mapper.FormValuesToAnswers(values, idx))
}

func TestStaleAnswersAreDroppedButKept(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "question", "questionId": "q1", "category": "text"}
	]}`)
	resp := model.Response{Answers: []model.Answer{
		{Question: "q1", Value: "x"},
		{Question: "q_removed", Value: "y"},
	}}

	values := mapper.ResponseToFormValues(resp, idx)
	assert.Equal(t, model.FormValues{"q1": "x"}, values)
	assert.Len(t, resp.Answers, 2, "mapping must not touch the response")
	assert.Equal(t, []model.Answer{{Question: "q_removed", Value: "y"}}, mapper.Stale(resp, idx))
}

func TestFormKeysFollowItemIDs(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "question", "id": "item-7", "questionId": "q1", "category": "text"}
	]}`)

	values := mapper.ResponseToFormValues(model.Response{Answers: []model.Answer{{Question: "q1", Value: "x"}}}, idx)
	assert.Equal(t, model.FormValues{"item-7": "x"}, values)

	answers := mapper.FormValuesToAnswers(values, idx)
	assert.Equal(t, []model.Answer{{Question: "q1", Value: "x"}}, answers)
}

func TestFormValuesToAnswersDocumentOrder(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "section", "items": [
			{"type": "question", "questionId": "q1", "category": "text"},
			{"type": "question", "questionId": "q2", "category": "text"}
		]},
		{"type": "question", "questionId": "q3", "category": "choice", "options": ["a", "b"], "other": true},
		{"type": "question", "questionId": "q4", "category": "text"}
	]}`)

	values := model.FormValues{
		"q4":              "last",
		"q3":              map[string]any{"value": []any{"a"}, "other": "c"},
		"q2":              "",
		"q1":              "first",
		"gone":            "ignored",
		model.SurveyIDKey: 12,
	}

	want := []model.Answer{
		{Question: "q1", Value: "first"},
		{Question: "q3", Value: map[string]any{"value": []any{"a"}, "other": "c"}},
		{Question: "q4", Value: "last"},
	}
	if diff := cmp.Diff(want, mapper.FormValuesToAnswers(values, idx)); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripIsOrderIndependent(t *testing.T) {
	idx := index(t, `{"type": "section", "items": [
		{"type": "question", "questionId": "q1", "category": "text"},
		{"type": "section", "items": [
			{"type": "question", "questionId": "q2", "category": "choice", "options": ["a", "b"]},
			{"type": "question", "questionId": "q3", "category": "text", "refusable": true}
		]}
	]}`)
	answers := []model.Answer{
		{Question: "q3", Value: "maybe"},
		{Question: "q1", Value: "hello"},
		{Question: "q2", Value: []any{"a", "b"}},
		{Question: "q1", Value: ""},
	}
	resp := model.Response{Answers: answers[:3]}

	got := mapper.FormValuesToAnswers(mapper.ResponseToFormValues(resp, idx), idx)

	sortAnswers := cmpopts.SortSlices(func(a, b model.Answer) bool { return a.Question < b.Question })
	if diff := cmp.Diff(resp.Answers, got, sortAnswers); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	// an empty value is not an answer
	resp.Answers = []model.Answer{answers[3]}
	assert.Empty(t, mapper.FormValuesToAnswers(mapper.ResponseToFormValues(resp, idx), idx))
}

func TestSubmission(t *testing.T) {
	idx := index(t, `{"type": "question", "questionId": "q1", "category": "text"}`)
	client := model.Client{ID: 5, FirstName: "Ada"}

	got := mapper.Submission(model.FormValues{"q1": "x"}, idx, 3, client.Respondent())
	assert.Equal(t, model.Response{
		Survey:     3,
		Respondent: model.Respondent{ID: 5, Type: "Client"},
		Answers:    []model.Answer{{Question: "q1", Value: "x"}},
	}, got)
}

func TestIsEmpty(t *testing.T) {
	var nilMap map[string]any
	for _, v := range []any{nil, "", []any{}, []string{}, map[string]any{}, nilMap, []int{}} {
		assert.True(t, mapper.IsEmpty(v), "%#v", v)
	}
	for _, v := range []any{"0", 0, false, []any{""}, map[string]any{"other": ""}} {
		assert.False(t, mapper.IsEmpty(v), "%#v", v)
	}
}

func TestSurveyKeyNeverBecomesAnAnswer(t *testing.T) {
	idx := definition.NewIndex(&model.Section{Items: []model.Node{
		&model.Question{QuestionID: model.SurveyIDKey, Category: model.CategoryText},
		&model.Question{QuestionID: "q1", Category: model.CategoryText},
	}})

	answers := mapper.FormValuesToAnswers(model.FormValues{model.SurveyIDKey: 7, "q1": "a"}, idx)
	assert.Equal(t, []model.Answer{{Question: "q1", Value: "a"}}, answers)
}
