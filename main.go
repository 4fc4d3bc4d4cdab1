package main

import (
	"os"

	"gonetids/internal/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error().Err(err).Msg("gonetids failed")
		os.Exit(1)
	}
}
