package main

import (
	"time"

	"github.com/urfave/cli/v2"
)

// runFlags returns all CLI flags for the queue-sim run command
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: []string{"VERBOSE"},
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "environment",
			Aliases: []string{"e"},
			Usage:   "Deployment environment for stream naming (development, workstation or production)",
			EnvVars: []string{"EVENTQ_ENVIRONMENT"},
			Value:   "development",
		},
		&cli.IntFlag{
			Name:    "producers",
			Aliases: []string{"p"},
			Usage:   "Number of concurrent producers",
			EnvVars: []string{"SIM_PRODUCERS"},
			Value:   4,
		},
		&cli.IntFlag{
			Name:    "consumers",
			Aliases: []string{"c"},
			Usage:   "Number of consumer registrations competing on the stream",
			EnvVars: []string{"SIM_CONSUMERS"},
			Value:   2,
		},
		&cli.IntFlag{
			Name:    "records",
			Aliases: []string{"n"},
			Usage:   "Records each producer publishes",
			EnvVars: []string{"SIM_RECORDS"},
			Value:   1000,
		},
		&cli.DurationFlag{
			Name:    "publish-interval",
			Usage:   "Delay between publishes per producer",
			EnvVars: []string{"SIM_PUBLISH_INTERVAL"},
			Value:   time.Millisecond,
		},
		&cli.DurationFlag{
			Name:    "poll-interval",
			Usage:   "Consumer poll cadence",
			EnvVars: []string{"EVENTQ_POLL_INTERVAL"},
			Value:   5 * time.Millisecond,
		},
		&cli.Int64Flag{
			Name:    "max-in-flight",
			Usage:   "Bound on records pending at once (0 disables the bound)",
			EnvVars: []string{"SIM_MAX_IN_FLIGHT"},
			Value:   0,
		},
		&cli.BoolFlag{
			Name:    "debug-payloads",
			Usage:   "Log full payloads as records are published and consumed",
			EnvVars: []string{"EVENTQ_DEBUG"},
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "Address for the Prometheus metrics server (empty disables it)",
			EnvVars: []string{"METRICS_ADDR"},
			Value:   "",
		},
	}
}
