// Command synckmz diffs a KML/KMZ export against the site store and applies
// the changes. Without --apply it only prints the diff, so a bad export can
// be caught before anything is written. Sites missing from the export are
// reported but never deleted.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
	"github.com/willslawrence/sfla-tracker/internal/geo"
	"github.com/willslawrence/sfla-tracker/internal/infrastructure/airtable"
	"github.com/willslawrence/sfla-tracker/internal/infrastructure/config"
	mongodb "github.com/willslawrence/sfla-tracker/internal/infrastructure/db/mongo"
	kmlsync "github.com/willslawrence/sfla-tracker/internal/sync"
	"github.com/willslawrence/sfla-tracker/pkg/logger"
)

func run(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: synckmz [flags] <export.kml|export.kmz>")
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	doc, err := geo.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	// The diff runs against the same backend the server reads from, so a
	// hosted-base deployment syncs exports straight into the base.
	var repo ports.SiteRepository
	switch cfg.StoreBackend {
	case "mongo":
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
		repo = mongodb.NewSiteRepository(db)
	case "airtable":
		if cfg.Airtable.APIKey == "" {
			return fmt.Errorf("store backend airtable: AIRTABLE_API_KEY is not set")
		}
		repo = airtable.NewRepository(storeClient(cfg, log))
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	syncer := kmlsync.NewSyncer(repo, logger.Component("sync"))

	diff, err := syncer.Diff(ctx, doc)
	if err != nil {
		return err
	}
	printDiff(diff)

	if !cmd.Bool("apply") {
		fmt.Println("\ndry run; pass --apply to write these changes")
		return nil
	}
	if diff.Empty() {
		fmt.Println("\nnothing to apply")
		return nil
	}

	if err := syncer.Apply(ctx, diff); err != nil {
		return err
	}
	fmt.Printf("\napplied: %d created, %d moved\n", len(diff.Added), len(diff.Moved))

	// Mirror new sites into the hosted base when Mongo is the primary
	// store, so the spreadsheet view the field team shares stays complete.
	if cmd.Bool("push-upstream") {
		if cfg.StoreBackend == "airtable" {
			return fmt.Errorf("push-upstream: sites are already synced into the hosted base")
		}
		if cfg.Airtable.APIKey == "" {
			return fmt.Errorf("push-upstream: AIRTABLE_API_KEY is not set")
		}
		store := storeClient(cfg, log)

		sites := make([]*domain.Site, 0, len(diff.Added))
		for _, cand := range diff.Added {
			sites = append(sites, &domain.Site{
				Name:        cand.Name,
				Coordinates: cand.Coords,
				Status:      domain.StatusUnchecked,
			})
		}
		if err := store.CreateSites(ctx, sites); err != nil {
			return fmt.Errorf("push-upstream: %w", err)
		}
		fmt.Printf("pushed %d new sites upstream\n", len(sites))
	}

	return nil
}

func storeClient(cfg *config.Config, log zerolog.Logger) *airtable.Client {
	return airtable.NewClient(airtable.Config{
		BaseURL:    cfg.Airtable.BaseURL,
		BaseID:     cfg.Airtable.BaseID,
		APIKey:     cfg.Airtable.APIKey,
		SitesTable: cfg.Airtable.SitesTable,
		Timeout:    cfg.Airtable.Timeout,
	}, log)
}

func printDiff(diff *kmlsync.Diff) {
	fmt.Printf("parsed export: %d new, %d moved, %d unchanged, %d missing from export",
		len(diff.Added), len(diff.Moved), len(diff.Unchanged), len(diff.Removed))
	if diff.Skipped > 0 {
		fmt.Printf(" (%d malformed placemarks skipped)", diff.Skipped)
	}
	if diff.Routes > 0 {
		fmt.Printf(", %d routes ignored", diff.Routes)
	}
	fmt.Println()

	for _, cand := range diff.Added {
		fmt.Printf("  + %s (%.6f, %.6f)\n", cand.Name, cand.Coords.Lat, cand.Coords.Lng)
	}
	for _, move := range diff.Moved {
		fmt.Printf("  ~ %s (%.6f, %.6f) -> (%.6f, %.6f)\n",
			move.Name, move.Old.Lat, move.Old.Lng, move.New.Lat, move.New.Lng)
	}
	for _, name := range diff.Removed {
		fmt.Printf("  ? %s missing from export (kept in store)\n", name)
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "synckmz",
		Usage:  "Diff a KML/KMZ export against the site store and apply changes",
		Action: run,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "Write the diff to the store (default is a dry run)",
			},
			&cli.BoolFlag{
				Name:  "push-upstream",
				Usage: "Also create new sites in the hosted base",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
