package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newCommandLogger(_ *cobra.Command) *zerolog.Logger {
	return &log.Logger
}

// printJSON writes value as indented JSON to the command's stdout, the
// wire format every facade operation's result is rendered in.
func printJSON(cmd *cobra.Command, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
