package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/bcalc/cli"
	"github.com/ardnew/bcalc/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		// Errors implement slog.LogValuer and log their own attributes.
		log.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}
