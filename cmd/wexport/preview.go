package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newPreviewCommand(globals *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [path]",
		Short: "Estimate the size of an export without writing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) > 0 {
				root = args[0]
			}

			cfg, err := loadConfig(globals, root)
			if err != nil {
				return err
			}

			meta, err := newFacade(globals).PreviewExport(*cfg)
			if err != nil {
				return err
			}

			newCommandLogger(cmd).Info().
				Int("includedFiles", meta.IncludedFiles).
				Str("estimatedSize", humanize.IBytes(uint64(meta.EstimatedBytes))).
				Msg("preview")

			return printJSON(cmd, meta)
		},
	}

	return cmd
}
