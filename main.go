package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"Gaadi/Config"
	"Gaadi/CronJobs"
	"Gaadi/FiberConfig"
	"Gaadi/Ledger"
	"Gaadi/Models"
	"Gaadi/Store"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := Config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := Models.Connect(cfg.DatabasePath); err != nil {
		log.Fatal().Err(err).Msg("failed to open operator database")
	}

	var store Store.Store
	if cfg.UseMemoryStore {
		store = Store.NewMemory()
		log.Warn().Msg("using in-memory store, records will not survive restart")
	} else {
		store, err = Store.NewFirestore(context.Background(), cfg.FirebaseCredentials)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Firestore")
		}
	}
	defer store.Close()

	svc := Ledger.NewService(store, log)

	auditor := CronJobs.NewDriftAuditor(svc, log, cfg.AuditSchedule, cfg.AuditOnStart)
	if err := auditor.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start balance auditor")
	}
	defer auditor.Stop()

	if err := FiberConfig.FiberConfig(cfg, svc, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
