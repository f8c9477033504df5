// Package model holds the data shapes that cross the facade boundary,
// adapted from the Rust original's src/models/mod.rs.
package model

// ManualSelectionState is a human's explicit, per-path override of the
// rule engine's verdict.
type ManualSelectionState string

const (
	Include ManualSelectionState = "include"
	Exclude ManualSelectionState = "exclude"
	Inherit ManualSelectionState = "inherit"
)

// LargeFileStrategy governs what happens to a file above maxFileSizeKB.
type LargeFileStrategy string

const (
	Truncate LargeFileStrategy = "truncate"
	Skip     LargeFileStrategy = "skip"
)

// OutputFormat selects the export layout. Only Txt has defined semantics
// here; Md is a reserved alias (spec §3) carried so callers that already
// persist a format choice don't need a migration.
type OutputFormat string

const (
	Txt OutputFormat = "txt"
	Md  OutputFormat = "md"
)

// ExportConfig is assembled outside the core (by internal/config from
// defaults, a file, and env, or directly by a caller) and drives every
// scan/selection/export operation.
type ExportConfig struct {
	RootPath          string                                  `mapstructure:"root_path" validate:"required"`
	UseGitignore      bool                                    `mapstructure:"use_gitignore"`
	IncludeGlobs      []string                                `mapstructure:"include_globs"`
	ExcludeGlobs      []string                                `mapstructure:"exclude_globs"`
	IncludeExtensions []string                                `mapstructure:"include_extensions"`
	ExcludeExtensions []string                                `mapstructure:"exclude_extensions"`
	StructureOnly     bool                                    `mapstructure:"structure_only"`
	MaxFileSizeKB     uint64                                  `mapstructure:"max_file_size_kb" validate:"gte=0"`
	LargeFileStrategy LargeFileStrategy                       `mapstructure:"large_file_strategy" validate:"oneof=truncate skip"`
	ManualSelections  map[string]ManualSelectionState         `mapstructure:"manual_selections"`
	OutputFormat      OutputFormat                            `mapstructure:"output_format" validate:"oneof=txt md"`
}

// MaxBytes is the byte ceiling derived from MaxFileSizeKB.
func (c ExportConfig) MaxBytes() int64 {
	return int64(c.MaxFileSizeKB) * 1024
}

// ScanLimits bounds traversal cost. Defaults per spec §6: 100000/64.
type ScanLimits struct {
	MaxFiles int
	MaxDepth int
}

// DefaultScanLimits returns the spec-mandated default ceilings.
func DefaultScanLimits() ScanLimits {
	return ScanLimits{MaxFiles: 100_000, MaxDepth: 64}
}

// TreeNode is one entry in a scanned directory tree.
type TreeNode struct {
	Path               string      `json:"path"`
	Name               string      `json:"name"`
	IsDir              bool        `json:"isDir"`
	ChildrenCount      *int        `json:"childrenCount,omitempty"`
	IgnoredByGitignore bool        `json:"ignoredByGitignore"`
	Children           []*TreeNode `json:"children"`
}

// SelectedFile is an internal-to-core record of one file chosen for export.
type SelectedFile struct {
	AbsPath string
	RelPath string
	Size    int64
}

// SelectionSummary is the evaluateSelection result.
type SelectionSummary struct {
	IncludedFiles int      `json:"includedFiles"`
	ExcludedFiles int      `json:"excludedFiles"`
	Warnings      []string `json:"warnings"`
}

// PreviewMeta is the previewExport result. EstimatedTokens is always nil:
// token estimation is an explicit non-goal (spec §1, §6).
type PreviewMeta struct {
	IncludedFiles   int      `json:"includedFiles"`
	EstimatedBytes  int64    `json:"estimatedBytes"`
	EstimatedTokens *int64   `json:"estimatedTokens"`
	Warnings        []string `json:"warnings"`
}

// ExportResult is the runExport result.
type ExportResult struct {
	OutputPath        string   `json:"outputPath"`
	ExportedFiles     int      `json:"exportedFiles"`
	SkippedFiles      int      `json:"skippedFiles"`
	TotalBytesWritten int64    `json:"totalBytesWritten"`
	Notes             []string `json:"notes"`
}
