package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newExportCommand(globals *globalOptions) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export the selected files of a workspace into a single document",
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

			result, err := newFacade(globals).RunExport(*cfg, outputPath)
			if err != nil {
				return err
			}

			newCommandLogger(cmd).Info().
				Str("outputPath", result.OutputPath).
				Int("exportedFiles", result.ExportedFiles).
				Int("skippedFiles", result.SkippedFiles).
				Str("totalBytesWritten", humanize.IBytes(uint64(result.TotalBytesWritten))).
				Msg("export complete")

			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (required)")
	cmd.MarkFlagRequired("output")

	return cmd
}
