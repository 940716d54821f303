// Command memomate-api runs the persistence service: users, words, and
// per-user progress over PostgreSQL, consumed by the bot's store client.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/memomate/memomate/core/api"
	"github.com/memomate/memomate/core/bootstrap"
	"github.com/memomate/memomate/core/config"
	"github.com/memomate/memomate/core/database"
	"github.com/memomate/memomate/core/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("memomate-api: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	var dbCfg database.Config
	if err := envconfig.Process("", &dbCfg); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	dbCfg.Normalize()

	res, err := bootstrap.Run(bootstrap.Options{Config: cfg, Database: dbCfg})
	if err != nil {
		return err
	}
	defer func() {
		_ = res.DB.Close()
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", cfg.API.Listen, cfg.API.Port)
	return api.Serve(ctx, addr, api.NewPostgresRepository(res.DB))
}
