package main

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mood-assistant/internal/credential"
	"github.com/nhle/mood-assistant/internal/dialogue"
	"github.com/nhle/mood-assistant/internal/extract"
	"github.com/nhle/mood-assistant/internal/model"
	"github.com/nhle/mood-assistant/internal/store"
	"github.com/nhle/mood-assistant/internal/weather"
)

// secretSource resolves a secret from the environment or the keyring.
type secretSource interface {
	Lookup(env, key string) (string, error)
}

// application holds the wired core shared by every front end.
type application struct {
	store  *store.SQLiteStore
	router *dialogue.Router
}

// newApplication opens the task store and builds the dialogue router. The
// weather lookup is enabled only when a CWA key is configured.
func newApplication(cfg *model.AppConfig, secrets secretSource, log *zap.Logger) (*application, error) {
	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	st, err := store.NewSQLiteStore(cfg.Store.Path, store.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("opening task store: %w", err)
	}

	var ws dialogue.WeatherService
	key, err := secrets.Lookup(credential.EnvWeatherAPIKey, credential.KeyWeatherAPIKey)
	switch {
	case err == nil:
		ws = weather.New(cfg.Weather.APIBase, key,
			time.Duration(cfg.Weather.TimeoutSec)*time.Second, log.Named("weather"))
	case errors.Is(err, credential.ErrNotConfigured):
		log.Warn("weather lookup disabled", zap.Error(err))
	default:
		_ = st.Close()
		return nil, fmt.Errorf("loading weather api key: %w", err)
	}

	router := dialogue.NewRouter(dialogue.Deps{
		Store:     st,
		Extractor: extract.New(extract.WithClock(now)),
		Weather:   ws,
		Logger:    log.Named("dialogue"),
	})

	log.Info("assistant ready",
		zap.String("store", cfg.Store.Path),
		zap.String("timezone", loc.String()),
		zap.Bool("weather", ws != nil))

	return &application{store: st, router: router}, nil
}

// Close releases the task store.
func (a *application) Close() error {
	return a.store.Close()
}
