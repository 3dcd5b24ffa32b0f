package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/riddleyu/go-server/internal/cache"
	"github.com/riddleyu/go-server/internal/daily"
	"github.com/riddleyu/go-server/internal/generator"
	"github.com/riddleyu/go-server/internal/httpserver"
	"github.com/riddleyu/go-server/internal/ledger"
	"github.com/riddleyu/go-server/internal/orchestrator"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cal, err := daily.New(getEnv("PUZZLE_TZ", "America/New_York"))
	if err != nil {
		log.Fatal().Err(err).Msg("bad PUZZLE_TZ")
	}

	store, err := openStore()
	if err != nil {
		log.Fatal().Err(err).Msg("open puzzle store")
	}
	defer store.Close()

	gen, err := generator.NewOpenAI(
		os.Getenv("OPENAI_API_KEY"),
		getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		os.Getenv("OPENAI_BASE_URL"),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build generator")
	}

	orch := orchestrator.New(store, gen, ledger.New(store), orchestrator.Options{
		Fallback: os.Getenv("DISABLE_FALLBACK") != "true",
		OnDemand: os.Getenv("DISABLE_ON_DEMAND") != "true",
	})

	srv := httpserver.New(orch, cal)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting riddleyu server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openStore picks the cache backend from PUZZLE_STORE.
func openStore() (cache.Store, error) {
	switch getEnv("PUZZLE_STORE", "sqlite") {
	case "badger":
		return cache.NewBadger(getEnv("PUZZLE_BADGER_DIR", "./data/badger"))
	case "memory":
		log.Warn().Msg("using in-memory puzzle store, entries lost on restart")
		return cache.NewMemory(), nil
	default:
		return cache.NewSQLite(getEnv("PUZZLE_DB", "./data/cache.db"))
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
