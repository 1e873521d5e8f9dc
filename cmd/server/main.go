package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"study-rag/internal/config"
	"study-rag/internal/db"
	"study-rag/internal/embedding"
	"study-rag/internal/rag"
	"study-rag/internal/server"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	// A missing .env is fine; real deployments inject env vars directly.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	var bunDB *bun.DB
	if cfg.Storage.Backend == "postgres" {
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		bunDB = db.NewDB(sqldb, cfg.Database.Debug)
		defer bunDB.Close()

		if err := db.InitDB(context.Background(), bunDB); err != nil {
			log.Fatal().Err(err).Msg("Error initializing database")
		}
	}

	svc := rag.New(cfg, embedder, bunDB)
	srv := server.New(&cfg.Server, svc)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
