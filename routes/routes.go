package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-survey-engine/app"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	api.Use(render.SetContentType(render.ContentTypeJSON))

	api.Route("/surveys", func(r chi.Router) {
		r.Post("/", CreateSurvey(app))
		r.Get("/", ListSurveys(app))
		r.Get(`/{id:^\d+$}`, GetSurveyById(app))
		r.Put(`/{id:^\d+$}`, UpdateSurvey(app))
		r.Delete(`/{id:^\d+$}`, DeleteSurvey(app))

		r.Get(`/{id:^\d+$}/questions`, GetSurveyQuestions(app))
		r.Post(`/{id:^\d+$}/warnings`, SurveyWarnings(app))
	})

	api.Route("/responses", func(r chi.Router) {
		r.Post("/", CreateResponse(app))
		r.Get("/", ListResponses(app))
		r.Get(`/{id:^\d+$}`, GetResponseById(app))
		r.Put(`/{id:^\d+$}`, UpdateResponse(app))
		r.Get(`/{id:^\d+$}/form`, GetResponseForm(app))
	})

	return api
}
