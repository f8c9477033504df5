package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foldstack/wexport/internal/config"
	"github.com/foldstack/wexport/internal/facade"
	"github.com/foldstack/wexport/internal/logging"
	"github.com/foldstack/wexport/internal/model"
)

type globalOptions struct {
	pretty     bool
	verbose    bool
	configFile string

	rootPath          string
	useGitignore      bool
	includeGlobs      []string
	excludeGlobs      []string
	includeExtensions []string
	excludeExtensions []string
	structureOnly     bool
	maxFileSizeKB     uint64
	largeFileStrategy string
	outputFormat      string
	manualSelections  []string
}

func (o *globalOptions) overrides() (model.ExportConfig, error) {
	manual, err := parseManualSelections(o.manualSelections)
	if err != nil {
		return model.ExportConfig{}, err
	}

	return model.ExportConfig{
		RootPath:          o.rootPath,
		UseGitignore:      o.useGitignore,
		IncludeGlobs:      o.includeGlobs,
		ExcludeGlobs:      o.excludeGlobs,
		IncludeExtensions: o.includeExtensions,
		ExcludeExtensions: o.excludeExtensions,
		StructureOnly:     o.structureOnly,
		MaxFileSizeKB:     o.maxFileSizeKB,
		LargeFileStrategy: model.LargeFileStrategy(o.largeFileStrategy),
		OutputFormat:      model.OutputFormat(o.outputFormat),
		ManualSelections:  manual,
	}, nil
}

// parseManualSelections turns repeated "--manual-select path=state" flag
// values into the map Load()/mergo expect.
func parseManualSelections(entries []string) (map[string]model.ManualSelectionState, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	selections := make(map[string]model.ManualSelectionState, len(entries))
	for _, entry := range entries {
		path, state, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --manual-select %q, want path=state", entry)
		}
		selections[strings.TrimSpace(path)] = model.ManualSelectionState(strings.TrimSpace(state))
	}
	return selections, nil
}

func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "wexport",
		Short:         "Export a workspace's selected files into a single text document",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.SetupLogger(logging.LoggingOptions{
				Pretty:  opts.pretty,
				Verbose: opts.verbose,
				Writer:  cmd.OutOrStdout(),
			})
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "enable pretty console logging")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a wexport.yaml config file")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable verbose logs")
	rootCmd.PersistentFlags().StringVar(&opts.rootPath, "root", "", "workspace root path (default: positional arg or .)")
	rootCmd.PersistentFlags().BoolVar(&opts.useGitignore, "gitignore", true, "honor .gitignore files under root")
	rootCmd.PersistentFlags().StringArrayVar(&opts.includeGlobs, "include-glob", nil, "include files matching this glob")
	rootCmd.PersistentFlags().StringArrayVar(&opts.excludeGlobs, "exclude-glob", nil, "exclude files matching this glob")
	rootCmd.PersistentFlags().StringArrayVar(&opts.includeExtensions, "include-ext", nil, "include files with this extension")
	rootCmd.PersistentFlags().StringArrayVar(&opts.excludeExtensions, "exclude-ext", nil, "exclude files with this extension")
	rootCmd.PersistentFlags().BoolVar(&opts.structureOnly, "structure-only", false, "export the directory structure without file contents")
	rootCmd.PersistentFlags().Uint64Var(&opts.maxFileSizeKB, "max-file-size-kb", 0, "per-file size ceiling in KiB (0 uses config/default)")
	rootCmd.PersistentFlags().StringVar(&opts.largeFileStrategy, "large-file-strategy", "", "truncate or skip files over max-file-size-kb")
	rootCmd.PersistentFlags().StringVar(&opts.outputFormat, "output-format", "", "txt or md")
	rootCmd.PersistentFlags().StringArrayVar(&opts.manualSelections, "manual-select", nil, "manual override as path=include|exclude|inherit (repeatable)")

	rootCmd.AddCommand(newTreeCommand(opts))
	rootCmd.AddCommand(newChildrenCommand(opts))
	rootCmd.AddCommand(newSelectionCommand(opts))
	rootCmd.AddCommand(newPreviewCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))

	return rootCmd
}

func newFacade(_ *globalOptions) *facade.Facade {
	return facade.New()
}

// loadConfig resolves the effective root (an explicit positional arg wins
// over --root, which wins over "."), then assembles the config the same
// way the persistent --config/env/flag layers always do.
func loadConfig(opts *globalOptions, positionalRoot string) (*model.ExportConfig, error) {
	root := positionalRoot
	if root == "" {
		root = opts.rootPath
	}
	if root == "" {
		root = "."
	}

	overrides, err := opts.overrides()
	if err != nil {
		return nil, err
	}
	overrides.RootPath = root

	return config.Load(opts.configFile, overrides)
}
