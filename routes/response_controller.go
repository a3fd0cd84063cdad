package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	json "github.com/goccy/go-json"

	"github.com/mbolis/quick-survey-engine/app"
	"github.com/mbolis/quick-survey-engine/database"
	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/httpx"
	"github.com/mbolis/quick-survey-engine/log"
	"github.com/mbolis/quick-survey-engine/mapper"
	"github.com/mbolis/quick-survey-engine/model"
	"github.com/mbolis/quick-survey-engine/warnings"
)

// Submission is what an editing UI posts: the raw form values plus who
// answered which survey. The server maps the values to answers. A client
// record, in either naming style, may stand in for the respondent.
type Submission struct {
	Survey     int              `json:"survey"`
	Respondent model.Respondent `json:"respondent"`
	Client     json.RawMessage  `json:"client"`
	Values     model.FormValues `json:"values"`
}

func (sub *Submission) respondent() (model.Respondent, error) {
	if len(sub.Client) > 0 && string(sub.Client) != "null" {
		client, err := model.DecodeClient(sub.Client)
		if err != nil {
			return model.Respondent{}, err
		}
		return client.Respondent(), nil
	}
	if sub.Respondent.Type == "" {
		sub.Respondent.Type = model.RespondentClient
	}
	return sub.Respondent, nil
}

func CreateResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := Submission{}
		err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodySize), &sub)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		respondent, err := sub.respondent()
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body.client")
			return
		}

		survey, err := app.GetSurvey(r.Context(), sub.Survey)
		switch {
		case errors.Is(err, database.ErrNotFound):
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "create_response.survey", "unknown survey %d", sub.Survey)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		idx := definition.NewIndex(survey.Definition)
		resp := mapper.Submission(sub.Values, idx, survey.ID, respondent)

		responseId, err := app.CreateResponse(r.Context(), &resp)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}
		log.WithFields(log.Fields{
			"survey":   survey.ID,
			"response": responseId,
			"answers":  len(resp.Answers),
		}).Debug("response created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":       responseId,
			"warnings": warnings.ForFormValues(idx, sub.Values),
		})
	}
}

func ListResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := database.ResponseFilter{}
		for param, dst := range map[string]*int{
			"survey":     &filter.Survey,
			"respondent": &filter.Respondent,
		} {
			raw := r.URL.Query().Get(param)
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_query_param."+param)
				return
			}
			*dst = n
		}

		responses, err := app.ListResponses(r.Context(), filter)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

func GetResponseById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := loadResponse(app, w, r)
		if !ok {
			return
		}
		render.JSON(w, r, resp)
	}
}

// GetResponseForm re-maps a stored response into form values for an edit
// flow, with the warnings the current definition raises against it.
func GetResponseForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := loadResponse(app, w, r)
		if !ok {
			return
		}

		survey, err := app.GetSurvey(r.Context(), resp.Survey)
		if err != nil {
			httpx.LogInternalError(w, "db.get_response.survey", err)
			return
		}

		idx := definition.NewIndex(survey.Definition)
		values := mapper.ResponseToFormValues(*resp, idx)
		values[model.SurveyIDKey] = survey.ID

		render.JSON(w, r, map[string]any{
			"survey":   survey,
			"values":   values,
			"warnings": warnings.ForResponse(idx, *resp),
		})
	}
}

// UpdateResponse replaces the answers of a response with the mapping of
// the posted form values. Concurrent edits are not detected.
func UpdateResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := loadResponse(app, w, r)
		if !ok {
			return
		}

		sub := Submission{}
		err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodySize), &sub)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		survey, err := app.GetSurvey(r.Context(), resp.Survey)
		if err != nil {
			httpx.LogInternalError(w, "db.get_response.survey", err)
			return
		}

		idx := definition.NewIndex(survey.Definition)
		resp.Answers = mapper.FormValuesToAnswers(sub.Values, idx)

		err = app.ReplaceResponse(r.Context(), resp)
		switch {
		case errors.Is(err, database.ErrNotFound):
			httpx.LogNotFound(w, "update_response", resp.ID)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.update_response", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"id":       resp.ID,
			"warnings": warnings.ForFormValues(idx, sub.Values),
		})
	}
}

func loadResponse(app app.App, w http.ResponseWriter, r *http.Request) (*model.Response, bool) {
	responseId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return nil, false
	}

	resp, err := app.GetResponse(r.Context(), responseId)
	switch {
	case errors.Is(err, database.ErrNotFound):
		httpx.LogNotFound(w, "get_response", responseId)
		return nil, false
	case err != nil:
		httpx.LogInternalError(w, "db.get_response", err)
		return nil, false
	}
	return resp, true
}
