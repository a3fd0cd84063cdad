package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-survey-engine/definition"
	"github.com/mbolis/quick-survey-engine/log"
	"github.com/mbolis/quick-survey-engine/model"
)

// SeedFile creates a survey from a definition document on disk. The
// format follows the file extension: .json, .yaml or .yml.
func SeedFile(ctx context.Context, store *Store, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "read seed")
	}

	var survey *model.Survey
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		survey, err = definition.Parse(raw)
	case ".yaml", ".yml":
		survey, err = definition.ParseYAML(raw)
	default:
		return 0, errors.Errorf("seed %s: unsupported file type", path)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "seed %s", path)
	}

	id, err := store.CreateSurvey(ctx, survey)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"survey": id, "file": path}).Info("seeded survey")
	return id, nil
}
