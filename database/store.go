package database

import (
	"context"
	"database/sql"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("version conflict")
)

// Store persists survey definitions and responses. It is the load/save
// collaborator of the engine and knows nothing about form values.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) CreateSurvey(ctx context.Context, survey *model.Survey) (int, error) {
	def, err := json.Marshal(survey.Definition)
	if err != nil {
		return 0, errors.Wrap(err, "encode definition")
	}

	var id int
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO survey (name, definition) VALUES (?, ?)
		RETURNING id`,
		survey.Name,
		string(def),
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert survey")
	}
	return id, nil
}

// ListSurveys returns every survey without its definition tree.
func (s *Store) ListSurveys(ctx context.Context) ([]model.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, name
		FROM survey
		ORDER BY name, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query surveys")
	}
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		var sv model.Survey
		if err := rows.Scan(&sv.ID, &sv.Version, &sv.Name); err != nil {
			return nil, errors.Wrap(err, "scan survey")
		}
		surveys = append(surveys, sv)
	}
	return surveys, errors.Wrap(rows.Err(), "iterate surveys")
}

func (s *Store) GetSurvey(ctx context.Context, id int) (*model.Survey, error) {
	sv := &model.Survey{}
	var def string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, version, name, definition
		FROM survey
		WHERE id = ?`,
		id,
	).Scan(&sv.ID, &sv.Version, &sv.Name, &def)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get survey %d", id)
	}

	sv.Definition, err = definition.ParseNode([]byte(def))
	if err != nil {
		return nil, errors.Wrapf(err, "survey %d", id)
	}
	return sv, nil
}

// ReplaceSurvey swaps the whole definition of an existing survey. The
// caller's Version must match the stored one; on success the new version
// is returned.
func (s *Store) ReplaceSurvey(ctx context.Context, survey *model.Survey) (int, error) {
	def, err := json.Marshal(survey.Definition)
	if err != nil {
		return 0, errors.Wrap(err, "encode definition")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE survey
		SET
			name = ?,
			definition = ?,
			version = version+1
		WHERE id = ?
			AND version = ?`,
		survey.Name,
		string(def),
		survey.ID,
		survey.Version,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "update survey %d", survey.ID)
	}
	// optimistic lock
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrapf(err, "update survey %d", survey.ID)
	}
	if n < 1 {
		if _, err := s.GetSurvey(ctx, survey.ID); err != nil {
			return 0, err
		}
		return 0, ErrConflict
	}
	return survey.Version + 1, nil
}

func (s *Store) DeleteSurvey(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM survey WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "delete survey %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "delete survey %d", id)
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

// CreateResponse stores resp and its answers in one transaction.
func (s *Store) CreateResponse(ctx context.Context, resp *model.Response) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	now := s.now()
	var id int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO response (survey_id, respondent_id, respondent_type, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		resp.Survey,
		resp.Respondent.ID,
		resp.Respondent.Type,
		now,
		now,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert response")
	}

	if err := insertAnswers(ctx, tx, id, resp.Answers); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit response")
	}
	return id, nil
}

// ReplaceResponse overwrites the answers of an existing response. There
// is no version check: the last submit wins.
func (s *Store) ReplaceResponse(ctx context.Context, resp *model.Response) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE response
		SET modified_at = ?
		WHERE id = ?`,
		s.now(),
		resp.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "update response %d", resp.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "update response %d", resp.ID)
	}
	if n < 1 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM answer WHERE response_id = ?`, resp.ID)
	if err != nil {
		return errors.Wrapf(err, "delete answers of response %d", resp.ID)
	}
	if err := insertAnswers(ctx, tx, resp.ID, resp.Answers); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit response")
}

func insertAnswers(ctx context.Context, tx *sql.Tx, responseID int, answers []model.Answer) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer (response_id, position, question_id, value)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare answers")
	}
	defer stmt.Close()

	for i, a := range answers {
		value, err := json.Marshal(a.Value)
		if err != nil {
			return errors.Wrapf(err, "encode answer to %s", a.Question)
		}
		_, err = stmt.ExecContext(ctx, responseID, i, a.Question, string(value))
		if err != nil {
			return errors.Wrapf(err, "insert answer to %s", a.Question)
		}
	}
	return nil
}

func (s *Store) GetResponse(ctx context.Context, id int) (*model.Response, error) {
	resp := &model.Response{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, survey_id, respondent_id, respondent_type, created_at, modified_at
		FROM response
		WHERE id = ?`,
		id,
	).Scan(&resp.ID, &resp.Survey, &resp.Respondent.ID, &resp.Respondent.Type, &resp.CreatedAt, &resp.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get response %d", id)
	}

	answers, err := s.answers(ctx, `WHERE a.response_id = ?`, id)
	if err != nil {
		return nil, err
	}
	resp.Answers = answers[id]
	if resp.Answers == nil {
		resp.Answers = []model.Answer{}
	}
	return resp, nil
}

// ResponseFilter narrows ListResponses; zero fields match everything.
type ResponseFilter struct {
	Survey     int
	Respondent int
}

func (f ResponseFilter) where() (string, []any) {
	clause := `WHERE (? = 0 OR r.survey_id = ?) AND (? = 0 OR r.respondent_id = ?)`
	return clause, []any{f.Survey, f.Survey, f.Respondent, f.Respondent}
}

func (s *Store) ListResponses(ctx context.Context, filter ResponseFilter) ([]model.Response, error) {
	where, args := filter.where()
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.survey_id, r.respondent_id, r.respondent_type, r.created_at, r.modified_at
		FROM response r
		`+where+`
		ORDER BY r.id`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		var r model.Response
		err := rows.Scan(&r.ID, &r.Survey, &r.Respondent.ID, &r.Respondent.Type, &r.CreatedAt, &r.ModifiedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan response")
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate responses")
	}

	answers, err := s.answers(ctx, `
		INNER JOIN response r ON (r.id = a.response_id)
		`+where, args...)
	if err != nil {
		return nil, err
	}
	for i := range responses {
		responses[i].Answers = answers[responses[i].ID]
		if responses[i].Answers == nil {
			responses[i].Answers = []model.Answer{}
		}
	}
	return responses, nil
}

// answers loads answers grouped by response id, each group in stored order.
func (s *Store) answers(ctx context.Context, clause string, args ...any) (map[int][]model.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.response_id, a.question_id, a.value
		FROM answer a
		`+clause+`
		ORDER BY a.response_id, a.position`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query answers")
	}
	defer rows.Close()

	out := map[int][]model.Answer{}
	for rows.Next() {
		var responseID int
		var a model.Answer
		var value string
		if err := rows.Scan(&responseID, &a.Question, &value); err != nil {
			return nil, errors.Wrap(err, "scan answer")
		}
		if err := json.Unmarshal([]byte(value), &a.Value); err != nil {
			return nil, errors.Wrapf(err, "decode answer to %s", a.Question)
		}
		out[responseID] = append(out[responseID], a)
	}
	return out, errors.Wrap(rows.Err(), "iterate answers")
}
