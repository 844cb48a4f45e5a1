package main

import (
	"context"
	"flag"
	"net"
	"os"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymledger/internal/config"
	"github.com/2beens/gymledger/internal/db"
	"github.com/2beens/gymledger/internal/ledger"
	"github.com/2beens/gymledger/internal/logging"
)

// backfill rebuilds the whole ledger from a calendar snapshot JSON file,
// e.g. after repairing the planner data by hand:
//
//	go run ./cmd/backfill -env development -config ./config.toml -file ./calendar.json
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	snapshotPath := flag.String("file", "", "path of the calendar snapshot JSON file")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    "debug",
	})

	if *snapshotPath == "" {
		log.Fatalln("snapshot file not set, use -file")
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	ctx := context.Background()

	var storage ledger.Storage
	switch cfg.StorageBackend {
	case "postgres":
		pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost: cfg.PostgresHost,
			DBPort: cfg.PostgresPort,
			DBName: cfg.PostgresDBName,
		})
		if err != nil {
			log.Fatalf("new db pool: %s", err)
		}
		defer pool.Close()
		storage = ledger.NewPostgresStorage(pool)
	default:
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: os.Getenv("GYMLEDGER_REDIS_PASS"),
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("close redis client: %s", err)
			}
		}()
		storage = ledger.NewRedisStorage(rdb)
	}

	payload, err := os.ReadFile(*snapshotPath)
	if err != nil {
		log.Fatalf("read snapshot file: %s", err)
	}

	days, err := ledger.ParseCalendarPayload(payload)
	if err != nil {
		log.Fatalf("parse calendar snapshot: %s", err)
	}

	store := ledger.NewStore(storage, nil)
	store.Load(ctx)
	log.Debugf("ledger loaded, %d entries before rebuild", len(store.Entries()))

	rebuilt, err := store.RebuildFromDays(ctx, days)
	if err != nil {
		log.Fatalf("rebuild ledger: %s", err)
	}

	for _, warning := range store.Warnings() {
		log.Warnf("ledger store: %s", warning)
	}

	log.Infof("ledger rebuilt from %d days: %d entries", len(days), rebuilt)
}
