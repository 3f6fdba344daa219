package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/willslawrence/sfla-tracker/internal/api"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
	"github.com/willslawrence/sfla-tracker/internal/core/service"
	"github.com/willslawrence/sfla-tracker/internal/infrastructure/airtable"
	"github.com/willslawrence/sfla-tracker/internal/infrastructure/config"
	mongodb "github.com/willslawrence/sfla-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/willslawrence/sfla-tracker/internal/infrastructure/db/redis"
	"github.com/willslawrence/sfla-tracker/internal/infrastructure/queue"
	"github.com/willslawrence/sfla-tracker/pkg/logger"
)

// @title        SFLA Site Tracker API
// @version      1.0
// @description  Field-site usability tracker: map markers, status checks, and monthly reports.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	changeRepo := mongodb.NewChangeLogRepository(db)
	operatorRepo := mongodb.NewOperatorRepository(db)
	if err := changeRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("change log indexes: %w", err)
	}

	// Sites live in Mongo by default; STORE_BACKEND=airtable serves them
	// from the hosted base instead. The change log and operators stay in
	// Mongo either way.
	var siteRepo ports.SiteRepository
	switch cfg.StoreBackend {
	case "mongo":
		repo := mongodb.NewSiteRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("site indexes: %w", err)
		}
		siteRepo = repo
	case "airtable":
		if cfg.Airtable.APIKey == "" {
			return fmt.Errorf("store backend airtable: AIRTABLE_API_KEY is not set")
		}
		siteRepo = airtable.NewRepository(airtable.NewClient(airtable.Config{
			BaseURL:    cfg.Airtable.BaseURL,
			BaseID:     cfg.Airtable.BaseID,
			APIKey:     cfg.Airtable.APIKey,
			SitesTable: cfg.Airtable.SitesTable,
			Timeout:    cfg.Airtable.Timeout,
		}, logger.Component("airtable")))
		log.Info().Str("base", cfg.Airtable.BaseID).Msg("serving sites from the hosted record store")
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	guard := redisdb.NewSequenceGuard(rdb)
	updateService := service.NewUpdateService(siteRepo, changeRepo, guard, log)

	dispatcher := queue.NewDispatcher(cfg.CheckWorkers, updateService, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Deps{
		Sites:      service.NewSiteService(siteRepo, changeRepo, log),
		Reports:    service.NewReportService(siteRepo, changeRepo, log),
		Auth:       service.NewAuthService(operatorRepo, cfg.JWTSecret, 24*time.Hour),
		Dispatcher: dispatcher,
		Mongo:      db,
		Redis:      rdb,
		JWTSecret:  cfg.JWTSecret,
		Logger:     log,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Info().Err(err).Msg("server stopped")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "sfla-server",
		Usage:  "Field-site usability tracker: map API, status checks, and monthly reports",
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
