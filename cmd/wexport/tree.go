package main

import "github.com/spf13/cobra"

func newTreeCommand(globals *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Scan the workspace root and return one level of its tree",
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

			node, err := newFacade(globals).ScanTree(*cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd, node)
		},
	}

	return cmd
}
