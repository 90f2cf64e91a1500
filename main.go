package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"onwhisper/cmd"
	"onwhisper/database"
)

const usage = `usage:
  onwhisper                    run the bot
  onwhisper migrate up         apply all pending migrations
  onwhisper migrate down [n]   roll back n migrations (default 1)
  onwhisper migrate status     print the current schema version
`

func main() {
	if len(os.Args) > 1 {
		if os.Args[1] != "migrate" {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if err := runMigration(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigration(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand, want up, down or status")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown subcommand %q, want up, down or status", args[0])
	}
}
