package facade

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foldstack/wexport/internal/model"
)

func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func baseConfig(root string) model.ExportConfig {
	return model.ExportConfig{
		RootPath:          root,
		MaxFileSizeKB:     256,
		LargeFileStrategy: model.Truncate,
		OutputFormat:      model.Txt,
	}
}

func TestScanTreeReturnsRootWithOneLevelExpanded(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"))
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	f := New()
	node, err := f.ScanTree(baseConfig(root))
	if err != nil {
		t.Fatalf("ScanTree() error: %v", err)
	}

	if node.Path != "." {
		t.Fatalf("expected root node path '.', got %q", node.Path)
	}
	if len(node.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(node.Children))
	}
	if node.Children[0].Path != "sub" {
		t.Fatalf("expected directory to be listed first, got %q", node.Children[0].Path)
	}
}

func TestScanChildrenRejectsPathOutsideRoot(t *testing.T) {
	root := t.TempDir()
	f := New()

	_, _, err := f.ScanChildren(baseConfig(root), "../outside")
	if err == nil || !strings.Contains(err.Error(), "E_PATH_OUTSIDE_ROOT") {
		t.Fatalf("expected E_PATH_OUTSIDE_ROOT, got %v", err)
	}
}

func TestScanChildrenRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"))
	f := New()

	_, _, err := f.ScanChildren(baseConfig(root), "a.txt")
	if err == nil || !strings.Contains(err.Error(), "E_DIRPATH_NOT_DIR") {
		t.Fatalf("expected E_DIRPATH_NOT_DIR, got %v", err)
	}
}

func TestScanChildrenEmptyOrDotMeansRoot(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"))
	f := New()

	nodes, _, err := f.ScanChildren(baseConfig(root), "")
	if err != nil {
		t.Fatalf("ScanChildren('') error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}

	nodes, _, err = f.ScanChildren(baseConfig(root), ".")
	if err != nil {
		t.Fatalf("ScanChildren('.') error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
}

func TestScanChildrenAtMaxDepthReturnsEmptyWithWarning(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a", "b.txt"))

	f := &Facade{Limits: model.ScanLimits{MaxFiles: 100_000, MaxDepth: 1}}
	nodes, warnings, err := f.ScanChildren(baseConfig(root), "a")
	if err != nil {
		t.Fatalf("ScanChildren() error: %v", err)
	}
	if len(nodes) != 0 {
		t.Fatalf("expected no children past maxDepth, got %#v", nodes)
	}
	if len(warnings) == 0 {
		t.Fatalf("expected a maxDepth warning")
	}
}

func TestEvaluateSelectionCountsIncludedAndExcluded(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "kept.go"))
	mustWriteFile(t, filepath.Join(root, "skip.log"))

	cfg := baseConfig(root)
	cfg.ExcludeExtensions = []string{"log"}

	f := New()
	summary, err := f.EvaluateSelection(cfg)
	if err != nil {
		t.Fatalf("EvaluateSelection() error: %v", err)
	}
	if summary.IncludedFiles != 1 || summary.ExcludedFiles != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestPreviewExportEstimatesTruncatedCeiling(t *testing.T) {
	root := t.TempDir()
	content := make([]byte, 2048)
	for i := range content {
		content[i] = 'x'
	}
	mustWriteFile(t, filepath.Join(root, "big.txt"))
	if err := os.WriteFile(filepath.Join(root, "big.txt"), content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := baseConfig(root)
	cfg.MaxFileSizeKB = 1

	f := New()
	meta, err := f.PreviewExport(cfg)
	if err != nil {
		t.Fatalf("PreviewExport() error: %v", err)
	}
	if meta.EstimatedTokens != nil {
		t.Fatalf("expected EstimatedTokens to always be nil (reserved, non-goal)")
	}
	if meta.EstimatedBytes != 1024 {
		t.Fatalf("expected estimate capped at maxBytes=1024, got %d", meta.EstimatedBytes)
	}
}

func TestRunExportWritesOutputFile(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"))

	outputPath := filepath.Join(t.TempDir(), "out.txt")
	f := New()
	result, err := f.RunExport(baseConfig(root), outputPath)
	if err != nil {
		t.Fatalf("RunExport() error: %v", err)
	}
	if result.ExportedFiles != 1 {
		t.Fatalf("expected 1 exported file, got %d", result.ExportedFiles)
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
}

func TestRunExportStructureOnlyLeavesWalkerCountsUnaffected(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"))
	mustWriteFile(t, filepath.Join(root, "sub", "b.txt"))

	cfg := baseConfig(root)
	cfg.StructureOnly = true

	outputPath := filepath.Join(t.TempDir(), "out.txt")
	f := New()
	result, err := f.RunExport(cfg, outputPath)
	if err != nil {
		t.Fatalf("RunExport() error: %v", err)
	}

	if result.ExportedFiles != 0 {
		t.Fatalf("expected 0 exported files under StructureOnly, got %d", result.ExportedFiles)
	}

	summary, err := f.EvaluateSelection(cfg)
	if err != nil {
		t.Fatalf("EvaluateSelection() error: %v", err)
	}
	if summary.IncludedFiles != 2 {
		t.Fatalf("expected StructureOnly to leave walker counts at 2 included files, got %d", summary.IncludedFiles)
	}
}

func TestRunExportFailsFastOnMissingRoot(t *testing.T) {
	f := New()
	_, err := f.RunExport(model.ExportConfig{RootPath: filepath.Join(t.TempDir(), "missing")}, filepath.Join(t.TempDir(), "out.txt"))
	if err == nil || !strings.Contains(err.Error(), "E_ROOT_INVALID") {
		t.Fatalf("expected E_ROOT_INVALID, got %v", err)
	}
}
