package app

import (
	"github.com/mbolis/quick-survey-engine/config"
	"github.com/mbolis/quick-survey-engine/database"
)

type App struct {
	*database.Store
	config.Config
}
