package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"XetraPull/internal/di"
	"XetraPull/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s first_extract_date=%s format=%s", cfg.Environment, cfg.Source.FirstExtractDate, cfg.Target.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(ctx, cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run the job once
	_, err = app.Run(ctx)
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		stop()
		os.Exit(1)
	}
}
