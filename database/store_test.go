package database_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-survey-engine/config"
	"github.com/mbolis/quick-survey-engine/database"
	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/model"
)

func openStore(t *testing.T) *database.Store {
	t.Helper()
	db, err := database.Open(config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewStore(db)
}

func parse(t *testing.T, doc string) *model.Survey {
	t.Helper()
	s, err := definition.Parse([]byte(doc))
	require.NoError(t, err)
	return s
}

const intake = `{"name": "Intake", "definition": {"type": "section", "title": "Intake", "items": [
	{"type": "question", "questionId": "q1", "category": "text"},
	{"type": "question", "questionId": "q2", "category": "choice", "options": ["a", "b"]}
]}}`

func TestSurveyLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	id, err := store.CreateSurvey(ctx, parse(t, intake))
	require.NoError(t, err)

	got, err := store.GetSurvey(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Intake", got.Name)
	assert.Equal(t, 1, got.Version)
	assert.Len(t, definition.Flatten(got.Definition), 2)

	list, err := store.ListSurveys(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Definition)

	replacement := parse(t, `{"name": "Intake v2", "definition": {"type": "question", "questionId": "q9", "category": "text"}}`)
	replacement.ID = id
	replacement.Version = 1
	version, err := store.ReplaceSurvey(ctx, replacement)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	_, err = store.ReplaceSurvey(ctx, replacement)
	assert.ErrorIs(t, err, database.ErrConflict)

	got, err = store.GetSurvey(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Intake v2", got.Name)
	assert.Equal(t, "q9", definition.Flatten(got.Definition)[0].QuestionID)

	require.NoError(t, store.DeleteSurvey(ctx, id))
	_, err = store.GetSurvey(ctx, id)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.ErrorIs(t, store.DeleteSurvey(ctx, id), database.ErrNotFound)

	replacement.Version = 2
	_, err = store.ReplaceSurvey(ctx, replacement)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestResponseLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	surveyID, err := store.CreateSurvey(ctx, parse(t, intake))
	require.NoError(t, err)

	resp := &model.Response{
		Survey:     surveyID,
		Respondent: model.Respondent{ID: 7, Type: model.RespondentClient},
		Answers: []model.Answer{
			{Question: "q2", Value: []any{"a", "b"}},
			{Question: "q1", Value: "hello"},
		},
	}
	id, err := store.CreateResponse(ctx, resp)
	require.NoError(t, err)

	got, err := store.GetResponse(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, surveyID, got.Survey)
	assert.Equal(t, model.Respondent{ID: 7, Type: "Client"}, got.Respondent)
	assert.Equal(t, resp.Answers, got.Answers)
	assert.False(t, got.CreatedAt.IsZero())

	got.Answers = []model.Answer{{Question: "q1", Value: "bye"}}
	require.NoError(t, store.ReplaceResponse(ctx, got))

	again, err := store.GetResponse(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []model.Answer{{Question: "q1", Value: "bye"}}, again.Answers)

	_, err = store.CreateResponse(ctx, &model.Response{Survey: surveyID, Respondent: model.Respondent{ID: 8, Type: "Client"}})
	require.NoError(t, err)

	all, err := store.ListResponses(ctx, database.ResponseFilter{Survey: surveyID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := store.ListResponses(ctx, database.ResponseFilter{Respondent: 7})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, again.Answers, mine[0].Answers)

	_, err = store.GetResponse(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.ErrorIs(t, store.ReplaceResponse(ctx, &model.Response{ID: 999}), database.ErrNotFound)

	require.NoError(t, store.DeleteSurvey(ctx, surveyID))
	all, err = store.ListResponses(ctx, database.ResponseFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSeedFile(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "followup.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
name: Follow-up
definition:
  type: section
  items:
    - type: question
      questionId: q1
      category: text
`), 0o600))

	id, err := database.SeedFile(ctx, store, yamlPath)
	require.NoError(t, err)
	got, err := store.GetSurvey(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Follow-up", got.Name)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"definition": {"type": "question"}}`), 0o600))
	_, err = database.SeedFile(ctx, store, badPath)
	assert.ErrorIs(t, err, definition.ErrMalformedDefinition)

	_, err = database.SeedFile(ctx, store, filepath.Join(dir, "notes.txt"))
	assert.Error(t, err)
}
