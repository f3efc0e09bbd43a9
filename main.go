// apps/go-server/main.go
//
// Wordflower server entrypoint: loads config from env, opens the SQLite
// database and applies migrations, loads the embedded puzzle catalog, and
// wires the session manager, analytics sink, and hint provider into the
// HTTP server.

package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wordflower/wordflower/apps/go-server/internal/analytics"
	"github.com/wordflower/wordflower/apps/go-server/internal/catalog"
	"github.com/wordflower/wordflower/apps/go-server/internal/hints"
	"github.com/wordflower/wordflower/apps/go-server/internal/httpserver"
	"github.com/wordflower/wordflower/apps/go-server/internal/session"
	"github.com/wordflower/wordflower/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cat, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzle catalog")
	}
	log.Info().Int("puzzles", cat.Len()).Msg("catalog loaded")

	db, err := openDB(getEnv("DB_PATH", "./data/wordflower.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	sink := analytics.NewSQLiteSink(db)
	completions := session.NewSQLiteCompletions(db)

	mgr := session.NewManager(cat, cat, sink, store.NewSQLite(db), completions, session.Config{
		Budget:       envInt("SESSION_BUDGET_SECONDS", session.DefaultBudget),
		TickInterval: time.Second,
	})

	// Hint content comes from the Merriam-Webster thesaurus; without an API
	// key the hint endpoints report unavailable and the game still runs.
	var hintProv hints.ContentProvider
	if key := os.Getenv("MWT_API_KEY"); key != "" {
		hintProv = &hints.Cached{
			Provider: hints.NewMWThesaurus(key),
			Cache:    hints.NewSQLiteCache(db),
		}
	} else {
		log.Warn().Msg("MWT_API_KEY not set; hints disabled")
	}

	srv := httpserver.New(httpserver.Deps{
		Users:        httpserver.NewSQLiteUsers(db),
		Catalog:      cat,
		Manager:      mgr,
		Sink:         sink,
		Feedback:     sink,
		Events:       sink,
		Completions:  completions,
		HintProvider: hintProv,
		HintPoolSize: envInt("HINT_POOL_SIZE", hints.DefaultPoolSize),
	})

	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting wordflower server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
