package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// Best-effort .env loading for local runs.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "queue-sim",
		Usage: "Drive synthetic load through the in-memory stream queue",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the simulation",
				Flags:  runFlags(),
				Action: run,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
