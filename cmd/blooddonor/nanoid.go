package main

import (
	"fmt"

	"blooddonor/internal/utils"

	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Print donor IDs for hand-written sample data",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "How many IDs to print",
			Value:   1,
		},
		&cli.IntFlag{
			Name:  "size",
			Usage: "ID length; anything but the default is rejected by the donor store",
			Value: utils.NanoidSize,
		},
	},
	Action: func(c *cli.Context) error {
		size := c.Int("size")
		for range c.Int("count") {
			id, err := utils.NanoIDSize(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, id)
		}
		return nil
	},
}
