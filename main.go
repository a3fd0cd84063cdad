package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mbolis/quick-survey-engine/app"
	"github.com/mbolis/quick-survey-engine/config"
	"github.com/mbolis/quick-survey-engine/database"
	"github.com/mbolis/quick-survey-engine/log"
	"github.com/mbolis/quick-survey-engine/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	store := database.NewStore(db)
	for _, path := range cfg.Seeds {
		if _, err := database.SeedFile(context.Background(), store, path); err != nil {
			log.Fatal("main.db.seed:", err)
		}
	}

	app := app.App{
		Store:  store,
		Config: cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
