package main

import (
	"context"
	"fmt"

	"blooddonor/internal/db"
	"blooddonor/internal/seed"
	"blooddonor/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Create the donors table and load sample donors",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		if err := db.ApplySchema(ctx, pool); err != nil {
			return err
		}

		logrus.Info("Seeding donors...")
		seeded, err := seed.SeedDonors(ctx, store.NewDonorRepository(pool))
		if err != nil {
			return fmt.Errorf("failed to seed donors: %w", err)
		}

		logrus.WithField("count", seeded).Info("Donors seeded successfully")

		return nil
	},
}
