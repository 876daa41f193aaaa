package main

import (
	"log/slog"
	"os"

	"github.com/SscSPs/referral_ledger/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		slog.Error("Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
