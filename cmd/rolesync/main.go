package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/urfave/cli/v2"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
)

func main() {
	app := cli.App{
		Name:  "rolesync",
		Usage: "recompute trust scores and automatic roles for every profile",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "database connection string",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:  "run",
			Usage: "walk all profiles and apply role changes",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "evaluate every profile but write nothing",
				},
				&cli.BoolFlag{
					Name:  "reconcile",
					Usage: "rebuild edit counters from the contribution ledger first",
				},
				&cli.IntFlag{
					Name:  "page-size",
					Value: 200,
				},
			},
			Action: runSync,
		},
		{
			Name:   "tiers",
			Usage:  "print the configured automatic role tiers",
			Action: runTiers,
		},
	}
	app.RunAndExitOnError()
}

func runSync(cctx *cli.Context) error {
	cfg := config.Load()
	logging.Setup(cctx.String("log-level"))

	dsn := cfg.DatabaseURL
	if v := cctx.String("database-url"); v != "" {
		dsn = v
	}

	tiers, err := config.LoadTierPolicy(cfg.RoleTiersPath)
	if err != nil {
		return fmt.Errorf("failed to load role tiers: %w", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if err := database.Connect(dsn, cfg.DBMaxConns); err != nil {
		return err
	}
	defer database.Close()
	if err := database.Migrate(database.DB); err != nil {
		return err
	}

	// Batch runs never publish; recipients read the stored notifications.
	profiles := services.NewProfileService(database.DB)
	ledger := services.NewLedgerService(database.DB)
	notifications := services.NewNotificationService(database.DB, profiles, nil)
	roles := services.NewRoleService(database.DB, profiles, ledger, notifications, tiers)

	opts := services.BatchOptions{
		DryRun:    cctx.Bool("dry-run"),
		Reconcile: cctx.Bool("reconcile"),
		PageSize:  cctx.Int("page-size"),
	}
	start := time.Now()
	result, err := roles.RecomputeAll(cctx.Context, opts)
	slog.Info("role sync finished",
		"processed", result.Processed,
		"changed", result.Changed,
		"failed", result.Failed,
		"dry_run", opts.DryRun,
		"reconcile", opts.Reconcile,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d profiles failed", result.Failed), 2)
	}
	return nil
}

func runTiers(cctx *cli.Context) error {
	cfg := config.Load()
	tiers, err := config.LoadTierPolicy(cfg.RoleTiersPath)
	if err != nil {
		return err
	}
	for _, t := range tiers.Tiers() {
		fmt.Printf("%-20s edits>=%-5d trust>=%-5.1f age>=%dd\n", t.Role, t.MinApprovedEdits, t.MinTrustScore, t.MinAccountAgeDays)
	}
	return nil
}
