package main

import (
	"log/slog"
	"os"

	"trivia-party-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		slog.Error("trivia-party failed", "err", err)
		os.Exit(1)
	}
}
