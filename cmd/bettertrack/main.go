package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/bettertrack/bettertrack/internal/commands"
	"github.com/bettertrack/bettertrack/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := commands.NewRootCommand().ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
