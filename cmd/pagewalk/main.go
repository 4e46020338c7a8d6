package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bakkerme/pagewalk/internal/config"
	"github.com/bakkerme/pagewalk/internal/core"
	"github.com/bakkerme/pagewalk/internal/observability/otelx"
	"github.com/bakkerme/pagewalk/internal/runner"
	"github.com/bakkerme/pagewalk/internal/runner/factory"
	"gopkg.in/yaml.v3"
)

func main() {
	env := config.LoadEnv()

	configPath := flag.String("config", env.WalkConfigPath, "path to walk document")
	walkID := flag.String("walk-id", env.WalkID, "walk identifier")
	runOnce := flag.Bool("run-once", env.RunOnce, "run one session and exit")
	allowPartial := flag.Bool("allow-partial", env.AllowPartialSeedErrors, "continue if a seed provider or traversal fails")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otelx.Init(ctx, logger, env.OTel)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	if shutdownTracing != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				logger.Warn("tracing shutdown failed", "error", err)
			}
		}()
	}

	doc, err := loadDocument(*configPath)
	if err != nil {
		log.Fatalf("failed to load walk document: %v", err)
	}

	walk, err := doc.ParseToWalkWithFactory(factory.NewFromEnvConfig(logger, env))
	if err != nil {
		log.Fatalf("failed to parse walk: %v", err)
	}
	walk.ID = *walkID

	driver := runner.New(logger)
	driver.AllowPartialSeedErrors = *allowPartial

	if env.SessionID != "" {
		ctx = core.WithSessionID(ctx, env.SessionID)
	}

	if *runOnce {
		if _, err := driver.RunOnce(ctx, walk); err != nil {
			log.Fatalf("session failed: %v", err)
		}
		return
	}

	if len(walk.Triggers) == 0 {
		log.Fatalf("walk %q has no triggers; use -run-once for a single session", walk.Name)
	}
	if err := driver.Start(ctx, walk); err != nil {
		log.Fatalf("failed to start runner: %v", err)
	}

	logger.Info("pagewalk running", "walk_id", walk.ID, "triggers", len(walk.Triggers))
	<-ctx.Done()
	time.Sleep(200 * time.Millisecond)
}

func loadDocument(path string) (*config.WalkDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc config.WalkDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse walk document: %w", err)
	}
	return &doc, nil
}
