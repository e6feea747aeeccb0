package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"turmoil/internal/config"
	"turmoil/internal/db"
	"turmoil/internal/game"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "turmoil-admin",
		Short:        "Operational tooling for a turmoil deployment",
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newGrantCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func withPool(cmd *cobra.Command, fn func(ctx context.Context, pool *pgxpool.Pool) error) error {
	cfg, err := config.LoadAdminFromEnv()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()
	pool, err := db.Connect(ctx, db.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, pool)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := db.Migrate(ctx, pool); err != nil {
					return err
				}
				fmt.Println("schema applied")
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the default countries, currencies and regions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				svc := game.NewService(pool, slog.Default())
				if err := svc.SeedWorld(ctx, nil); err != nil {
					return err
				}
				fmt.Println("world seeded")
				return nil
			})
		},
	}
}

func newGrantCmd() *cobra.Command {
	var userID int64
	var gold float64
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Mint gold into a player account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID <= 0 || gold <= 0 {
				return fmt.Errorf("--user and --gold are required and must be positive")
			}
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				svc := game.NewService(pool, slog.Default())
				micros := int64(gold * float64(game.MicrosPerUnit))
				if err := svc.GrantGold(ctx, userID, micros); err != nil {
					return err
				}
				fmt.Printf("granted %s gold to user %d\n", game.FormatMicros(micros), userID)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "target user id")
	cmd.Flags().Float64Var(&gold, "gold", 0, "amount of gold to mint")
	return cmd
}
