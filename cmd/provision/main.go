// Command provision creates or drops the users table.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"userdir-backend/infrastructure/config"
	"userdir-backend/infrastructure/di"

	"go.uber.org/zap"
)

func main() {
	drop := flag.Bool("drop", false, "drop the users table instead of creating it")
	timeout := flag.Duration("timeout", 3*time.Minute, "overall operation timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg, true)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if *drop {
		if err := container.UserRepo.DeleteTable(ctx); err != nil {
			container.Logger.Fatal("Drop table failed", zap.Error(err))
		}
		return
	}

	if err := container.UserRepo.CreateTable(ctx); err != nil {
		container.Logger.Fatal("Create table failed", zap.Error(err))
	}
}
