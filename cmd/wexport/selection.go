package main

import "github.com/spf13/cobra"

func newSelectionCommand(globals *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selection [path]",
		Short: "Evaluate the rule engine over the workspace without exporting",
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

			summary, err := newFacade(globals).EvaluateSelection(*cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}

	return cmd
}
