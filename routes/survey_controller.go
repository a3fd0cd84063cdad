package routes

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-survey-engine/app"
	"github.com/mbolis/quick-survey-engine/database"
	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/httpx"
	"github.com/mbolis/quick-survey-engine/log"
	"github.com/mbolis/quick-survey-engine/model"
	"github.com/mbolis/quick-survey-engine/warnings"
)

const maxBodySize = 1 << 20

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, ok := readDefinition(w, r)
		if !ok {
			return
		}

		surveyId, err := app.CreateSurvey(r.Context(), survey)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": surveyId,
		})
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.ListSurveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, ok := loadSurvey(app, w, r)
		if !ok {
			return
		}
		render.JSON(w, r, survey)
	}
}

// GetSurveyQuestions lists the questions of a survey in document order.
func GetSurveyQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, ok := loadSurvey(app, w, r)
		if !ok {
			return
		}

		questions := definition.Flatten(survey.Definition)
		if questions == nil {
			questions = []*model.Question{}
		}
		render.JSON(w, r, map[string]any{
			"questions": questions,
		})
	}
}

func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, ok := readDefinition(w, r)
		if !ok {
			return
		}
		survey.ID = surveyId

		version, err := app.ReplaceSurvey(r.Context(), survey)
		switch {
		case errors.Is(err, database.ErrNotFound):
			httpx.LogNotFound(w, "update_survey", surveyId)
			return
		case errors.Is(err, database.ErrConflict):
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.update_survey.verify.conflict")
			return
		case err != nil:
			httpx.LogInternalError(w, "db.update_survey", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"id":      surveyId,
			"version": version,
		})
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = app.DeleteSurvey(r.Context(), surveyId)
		switch {
		case errors.Is(err, database.ErrNotFound):
			httpx.LogNotFound(w, "delete_survey", surveyId)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.delete_survey", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// SurveyWarnings checks a set of form values against a survey without
// storing anything.
func SurveyWarnings(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, ok := loadSurvey(app, w, r)
		if !ok {
			return
		}

		values := model.FormValues{}
		err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodySize), &values)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		idx := definition.NewIndex(survey.Definition)
		render.JSON(w, r, map[string]any{
			"warnings": warnings.ForFormValues(idx, values),
		})
	}
}

func loadSurvey(app app.App, w http.ResponseWriter, r *http.Request) (*model.Survey, bool) {
	surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return nil, false
	}

	survey, err := app.GetSurvey(r.Context(), surveyId)
	switch {
	case errors.Is(err, database.ErrNotFound):
		httpx.LogNotFound(w, "get_survey", surveyId)
		return nil, false
	case err != nil:
		httpx.LogInternalError(w, "db.get_survey", err)
		return nil, false
	}
	return survey, true
}

func readDefinition(w http.ResponseWriter, r *http.Request) (*model.Survey, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.read_body")
		return nil, false
	}

	survey, err := definition.Parse(body)
	if err != nil {
		var mde *definition.MalformedDefinitionError
		if errors.As(err, &mde) {
			httpx.LogStatusJSON(w, r, http.StatusBadRequest, "request.parse_definition", mde.Messages())
		} else {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_definition")
		}
		return nil, false
	}
	return survey, true
}
