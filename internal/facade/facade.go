// Package facade implements the Command facade (spec §4/§6, component I):
// a thin adapter exposing scanTree, scanChildren, evaluateSelection,
// previewExport, and runExport. It is the only component that wires
// E (rules) + F (scan) + G (walker) + H (export) together; each operation
// constructs a fresh rule engine and is otherwise stateless, matching the
// "request-scoped, no persistence between operations" lifecycle in spec §3.
package facade

import (
	"github.com/rs/zerolog"

	"github.com/foldstack/wexport/internal/errs"
	"github.com/foldstack/wexport/internal/export"
	"github.com/foldstack/wexport/internal/logging"
	"github.com/foldstack/wexport/internal/model"
	"github.com/foldstack/wexport/internal/pathutil"
	"github.com/foldstack/wexport/internal/rules"
	"github.com/foldstack/wexport/internal/scan"
	"github.com/foldstack/wexport/internal/walker"
)

// Facade bundles the scan limits and optional logger shared by every
// operation it exposes. A zero-value Facade uses the spec-mandated
// default limits (100000 files, depth 64).
type Facade struct {
	Limits model.ScanLimits
	Logger *zerolog.Logger
}

// New returns a Facade configured with the default scan limits.
func New() *Facade {
	return &Facade{Limits: model.DefaultScanLimits()}
}

func (f *Facade) limits() model.ScanLimits {
	if f.Limits.MaxFiles == 0 && f.Limits.MaxDepth == 0 {
		return model.DefaultScanLimits()
	}
	return f.Limits
}

// logWarnings forwards every Selection Walker warning to the structured
// logger so maxDepth/maxFiles ceilings are observable without waiting on
// the response payload.
func (f *Facade) logWarnings(warnings []string) {
	for _, w := range warnings {
		logging.LogWarning(f.Logger, w)
	}
}

// prepare canonicalises the root and constructs a fresh rule engine,
// shared setup for every operation (spec: "the rule engine is
// constructed per request").
func (f *Facade) prepare(cfg model.ExportConfig) (string, *rules.Engine, error) {
	root, err := pathutil.CanonicalizeDir(cfg.RootPath)
	if err != nil {
		return "", nil, err
	}

	engine, err := rules.New(root, cfg)
	if err != nil {
		return "", nil, err
	}

	logging.LogRuleEngineBuilt(f.Logger, root, cfg.UseGitignore)
	return root, engine, nil
}

// ScanTree is scanSingleLevel(root, root) wrapped as the root node
// (spec §4.F).
func (f *Facade) ScanTree(cfg model.ExportConfig) (*model.TreeNode, error) {
	root, engine, err := f.prepare(cfg)
	if err != nil {
		return nil, err
	}

	result, err := scan.SingleLevel(root, root, f.limits(), engine)
	if err != nil {
		return nil, err
	}

	f.logWarnings(result.Warnings)
	count := len(result.Nodes)
	return &model.TreeNode{
		Path:          ".",
		Name:          pathutil.FileNameOrFallback(root, "workspace"),
		IsDir:         true,
		ChildrenCount: &count,
		Children:      result.Nodes,
	}, nil
}

// ScanChildren resolves dirPath under root (""/"." means root itself)
// and returns one level of its children (spec §4.F).
func (f *Facade) ScanChildren(cfg model.ExportConfig, dirPath string) ([]*model.TreeNode, []string, error) {
	root, engine, err := f.prepare(cfg)
	if err != nil {
		return nil, nil, err
	}

	limits := f.limits()

	targetAbs := root
	if dirPath != "" && dirPath != "." {
		resolved, err := pathutil.EnsureUnderRoot(root, dirPath)
		if err != nil {
			return nil, nil, err
		}
		info, statErr := statDir(resolved)
		if statErr != nil || !info {
			return nil, nil, errs.New(errs.DirPathNotDir, "dirPath must be a directory")
		}
		targetAbs = resolved
	}

	depth, err := pathComponentDepth(root, targetAbs)
	if err != nil {
		return nil, nil, err
	}
	if depth >= limits.MaxDepth {
		warnings := []string{"Reached maxDepth limit. No children returned."}
		f.logWarnings(warnings)
		return []*model.TreeNode{}, warnings, nil
	}

	result, err := scan.SingleLevel(root, targetAbs, limits, engine)
	if err != nil {
		return nil, nil, err
	}

	f.logWarnings(result.Warnings)
	return result.Nodes, result.Warnings, nil
}

// EvaluateSelection runs the Selection Walker and reports counts only
// (spec §6).
func (f *Facade) EvaluateSelection(cfg model.ExportConfig) (model.SelectionSummary, error) {
	root, engine, err := f.prepare(cfg)
	if err != nil {
		return model.SelectionSummary{}, err
	}

	run, err := walker.Collect(root, engine, f.limits())
	if err != nil {
		return model.SelectionSummary{}, err
	}

	f.logWarnings(run.Warnings)
	return model.SelectionSummary{
		IncludedFiles: run.IncludedFiles,
		ExcludedFiles: run.ExcludedFiles,
		Warnings:      run.Warnings,
	}, nil
}

// PreviewExport estimates the export's byte total as a ceiling guideline
// (spec §9: "treat the estimate as a ceiling guideline, not a guarantee").
func (f *Facade) PreviewExport(cfg model.ExportConfig) (model.PreviewMeta, error) {
	root, engine, err := f.prepare(cfg)
	if err != nil {
		return model.PreviewMeta{}, err
	}

	run, err := walker.Collect(root, engine, f.limits())
	if err != nil {
		return model.PreviewMeta{}, err
	}

	f.logWarnings(run.Warnings)
	var estimated int64
	if !cfg.StructureOnly {
		maxBytes := cfg.MaxBytes()
		for _, file := range run.Files {
			switch cfg.LargeFileStrategy {
			case model.Skip:
				if file.Size <= maxBytes {
					estimated += file.Size
				}
			default:
				if file.Size > maxBytes {
					estimated += maxBytes
				} else {
					estimated += file.Size
				}
			}
		}
	}

	return model.PreviewMeta{
		IncludedFiles:   run.IncludedFiles,
		EstimatedBytes:  estimated,
		EstimatedTokens: nil,
		Warnings:        run.Warnings,
	}, nil
}

// RunExport runs the Selection Walker then streams the result to
// outputPath via the Streaming Exporter (spec §4.G + §4.H).
func (f *Facade) RunExport(cfg model.ExportConfig, outputPath string) (model.ExportResult, error) {
	root, engine, err := f.prepare(cfg)
	if err != nil {
		return model.ExportResult{}, err
	}

	run, err := walker.Collect(root, engine, f.limits())
	if err != nil {
		return model.ExportResult{}, err
	}

	result, err := export.Run(run.Files, cfg, outputPath)
	if err != nil {
		return model.ExportResult{}, err
	}

	f.logWarnings(run.Warnings)
	for _, note := range result.Notes {
		logging.LogFileNote(f.Logger, note)
	}
	result.Notes = append(append([]string{}, run.Warnings...), result.Notes...)

	logging.LogExportComplete(f.Logger, result.ExportedFiles, result.SkippedFiles, result.TotalBytesWritten)

	return result, nil
}
