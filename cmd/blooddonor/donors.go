package main

import (
	"context"
	"fmt"

	"blooddonor/internal/db"
	"blooddonor/internal/directory"
	"blooddonor/internal/matching"
	"blooddonor/internal/store"
	"blooddonor/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var donorsCommand = &cli.Command{
	Name:  "donors",
	Usage: "List donors from the directory, optionally filtered",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "blood-type",
			Aliases: []string{"b"},
			Usage:   "Only donors of this blood group, e.g. O+",
		},
		&cli.StringFlag{
			Name:  "city",
			Usage: "Only donors in this city (case-insensitive)",
		},
		&cli.StringFlag{
			Name:  "email",
			Usage: "Show the first donor registered under this email",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		criteria, err := types.ParseSearchCriteria(c.String("blood-type"), c.String("city"))
		if err != nil {
			return err
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger := logrus.StandardLogger()
		dir := directory.New(store.NewDonorRepository(pool), logger, nil)

		donors, err := dir.ListDonors(ctx)
		if err != nil {
			return err
		}

		if email := c.String("email"); email != "" {
			donor, ok := matching.MatchDonorByEmail(donors, email)
			if !ok {
				return fmt.Errorf("no donor registered with %s", email)
			}
			if n := matching.CountByEmail(donors, email); n > 1 {
				logger.WithField("count", n).Warn("email shared by several donors, showing the first")
			}
			pp.Println(donor)
			return nil
		}

		matched := matching.FilterDonors(donors, criteria)
		pp.Println(matched)
		logger.WithField("count", len(matched)).Info("donors listed")

		return nil
	},
}
