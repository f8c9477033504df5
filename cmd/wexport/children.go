package main

import (
	"github.com/spf13/cobra"
)

func newChildrenCommand(globals *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "children <dirPath> [rootPath]",
		Short: "Return one level of children under dirPath",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirPath := args[0]

			root := ""
			if len(args) > 1 {
				root = args[1]
			}

			cfg, err := loadConfig(globals, root)
			if err != nil {
				return err
			}

			nodes, warnings, err := newFacade(globals).ScanChildren(*cfg, dirPath)
			if err != nil {
				return err
			}

			return printJSON(cmd, struct {
				Children []any    `json:"children"`
				Warnings []string `json:"warnings"`
			}{
				Children: toAnySlice(nodes),
				Warnings: warnings,
			})
		},
	}

	return cmd
}

func toAnySlice[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
