package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/foldstack/wexport/internal/logging"
)

func main() {
	logging.SetupLogger(logging.LoggingOptions{Writer: os.Stderr})

	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
