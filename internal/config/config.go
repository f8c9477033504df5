// Package config assembles an ExportConfig the way the teacher's own
// internal/config assembles its Config: viper defaults plus an optional
// YAML file and env overrides, merged against caller-supplied overrides
// with dario.cat/mergo, then validated with go-playground/validator
// before it reaches the core.
package config

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/foldstack/wexport/internal/model"
)

const envPrefix = "WEXPORT"

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Load builds an ExportConfig from defaults, an optional YAML file, and
// WEXPORT_*-prefixed environment variables, then merges caller overrides
// on top (overrides win) and validates the result.
func Load(configFile string, overrides model.ExportConfig) (*model.ExportConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("use_gitignore", true)
	v.SetDefault("max_file_size_kb", 1024)
	v.SetDefault("large_file_strategy", string(model.Truncate))
	v.SetDefault("output_format", string(model.Txt))
	v.SetDefault("structure_only", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	manualSelections := map[string]model.ManualSelectionState{}
	for key, state := range v.GetStringMapString("manual_selections") {
		manualSelections[key] = model.ManualSelectionState(strings.TrimSpace(state))
	}

	loaded := model.ExportConfig{
		RootPath:          strings.TrimSpace(v.GetString("root_path")),
		UseGitignore:      v.GetBool("use_gitignore"),
		IncludeGlobs:      v.GetStringSlice("include_globs"),
		ExcludeGlobs:      v.GetStringSlice("exclude_globs"),
		IncludeExtensions: v.GetStringSlice("include_extensions"),
		ExcludeExtensions: v.GetStringSlice("exclude_extensions"),
		StructureOnly:     v.GetBool("structure_only"),
		MaxFileSizeKB:     uint64(v.GetInt64("max_file_size_kb")),
		LargeFileStrategy: model.LargeFileStrategy(v.GetString("large_file_strategy")),
		ManualSelections:  manualSelections,
		OutputFormat:      model.OutputFormat(v.GetString("output_format")),
	}

	if err := mergo.Merge(&loaded, overrides, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge config overrides: %w", err)
	}

	if loaded.MaxFileSizeKB == 0 {
		loaded.MaxFileSizeKB = 1024
	}
	if loaded.LargeFileStrategy == "" {
		loaded.LargeFileStrategy = model.Truncate
	}
	if loaded.OutputFormat == "" {
		loaded.OutputFormat = model.Txt
	}

	if err := configValidator.Struct(loaded); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &loaded, nil
}
