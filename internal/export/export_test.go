package export

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foldstack/wexport/internal/model"
)

func writeTempFile(t *testing.T, dir, name string, content []byte) model.SelectedFile {
	t.Helper()
	abs := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	return model.SelectedFile{AbsPath: abs, RelPath: name, Size: info.Size()}
}

func baseConfig() model.ExportConfig {
	return model.ExportConfig{MaxFileSizeKB: 256, LargeFileStrategy: model.Truncate}
}

func TestWriteStructureBlockOrdersDirectoriesBeforeFiles(t *testing.T) {
	files := []model.SelectedFile{
		{RelPath: "ADir/a.txt"},
		{RelPath: "Beta.txt"},
		{RelPath: "a.txt"},
		{RelPath: "bDir/z.txt"},
	}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if _, err := WriteStructureBlock(w, files); err != nil {
		t.Fatalf("WriteStructureBlock() error: %v", err)
	}
	w.Flush()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := []string{
		"=== STRUCTURE ===",
		".",
		"ADir",
		"bDir",
		"a.txt",
		"ADir/a.txt",
		"bDir/z.txt",
		"Beta.txt",
		"",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d\n got: %#v\nwant: %#v", len(lines), len(want), lines, want)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Fatalf("line %d: got %q, want %q", i, lines[i], w)
		}
	}
}

func TestExportFileNormalizesCRLFAndBareCR(t *testing.T) {
	dir := t.TempDir()
	f := writeTempFile(t, dir, "a.txt", []byte("a\r\nb\rc\n"))

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	outcome, err := ExportFile(w, f, baseConfig())
	if err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	w.Flush()

	if !outcome.Exported {
		t.Fatalf("expected file to be exported")
	}
	if strings.ContainsRune(buf.String(), '\r') {
		t.Fatalf("expected no \\r byte in output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "a\nb\nc\n") {
		t.Fatalf("expected normalized body, got %q", buf.String())
	}
}

func TestExportFileTruncatesLargeFileRawBytes(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("x"), 2048)
	f := writeTempFile(t, dir, "large.txt", content)

	cfg := model.ExportConfig{MaxFileSizeKB: 1, LargeFileStrategy: model.Truncate}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	outcome, err := ExportFile(w, f, cfg)
	if err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	w.Flush()

	if !outcome.Truncated {
		t.Fatalf("expected truncation")
	}
	if !strings.Contains(outcome.Note, "wrote first 1024 bytes") {
		t.Fatalf("unexpected note: %q", outcome.Note)
	}
	if !strings.Contains(buf.String(), "[TRUNCATED at 1024 bytes]") {
		t.Fatalf("expected truncation marker in output")
	}
}

func TestExportFileSkipsLargeFileUnderSkipStrategy(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("x"), 2048)
	f := writeTempFile(t, dir, "large.txt", content)

	cfg := model.ExportConfig{MaxFileSizeKB: 1, LargeFileStrategy: model.Skip}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	outcome, err := ExportFile(w, f, cfg)
	if err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	w.Flush()

	if !outcome.Skipped {
		t.Fatalf("expected skip")
	}
	if !strings.Contains(outcome.Note, "exceeds maxFileSizeKB") {
		t.Fatalf("unexpected note: %q", outcome.Note)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written for a skipped file, got %q", buf.String())
	}
}

func TestExportFileExactlyAtLimitIsNotTruncatedOrSkipped(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("y"), 1024)
	f := writeTempFile(t, dir, "exact.txt", content)

	cfg := model.ExportConfig{MaxFileSizeKB: 1, LargeFileStrategy: model.Truncate}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	outcome, err := ExportFile(w, f, cfg)
	if err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	w.Flush()

	if outcome.Truncated {
		t.Fatalf("expected no truncation at exactly the byte ceiling")
	}
	if !outcome.Exported {
		t.Fatalf("expected file to be exported")
	}
}

func TestExportFileSkipsBinaryContent(t *testing.T) {
	dir := t.TempDir()
	content := append([]byte{0x00, 0x01, 0x02, 0xFF}, bytes.Repeat([]byte("x"), 100)...)
	f := writeTempFile(t, dir, "bin.dat", content)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	outcome, err := ExportFile(w, f, baseConfig())
	if err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	w.Flush()

	if !outcome.Skipped {
		t.Fatalf("expected binary file to be skipped")
	}
	if !strings.Contains(outcome.Note, "binary file") {
		t.Fatalf("unexpected note: %q", outcome.Note)
	}
}

func TestExportFileMissingFileIsSkippedNotFatal(t *testing.T) {
	f := model.SelectedFile{AbsPath: filepath.Join(t.TempDir(), "missing.txt"), RelPath: "missing.txt"}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	outcome, err := ExportFile(w, f, baseConfig())
	if err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	if !outcome.Skipped {
		t.Fatalf("expected open failure to be recovered as a skip")
	}
	if !strings.Contains(outcome.Note, "failed to open") {
		t.Fatalf("unexpected note: %q", outcome.Note)
	}
}

func TestRunEndToEndStructureAndFiles(t *testing.T) {
	dir := t.TempDir()
	files := []model.SelectedFile{
		writeTempFile(t, dir, "a.txt", []byte("a\r\nb\rc\n")),
		writeTempFile(t, dir, "ADir/a.txt", []byte("a")),
	}

	outputPath := filepath.Join(t.TempDir(), "out.txt")
	result, err := Run(files, baseConfig(), outputPath)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.ExportedFiles != 2 {
		t.Fatalf("expected 2 exported files, got %d", result.ExportedFiles)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "=== STRUCTURE ===\n") {
		t.Fatalf("expected structure header, got %q", out[:40])
	}
	if !strings.Contains(out, "=== FILE: a.txt ===\n") {
		t.Fatalf("expected a.txt file block")
	}
	if !strings.Contains(out, "=== END FILE: ADir/a.txt ===") {
		t.Fatalf("expected ADir/a.txt end marker")
	}
	if strings.ContainsRune(out, '\r') {
		t.Fatalf("expected no \\r in final output")
	}
}

func TestRunStructureOnlyOmitsFileBlocks(t *testing.T) {
	dir := t.TempDir()
	files := []model.SelectedFile{
		writeTempFile(t, dir, "a.txt", []byte("a\r\nb\rc\n")),
		writeTempFile(t, dir, "ADir/a.txt", []byte("a")),
	}

	cfg := baseConfig()
	cfg.StructureOnly = true

	outputPath := filepath.Join(t.TempDir(), "out.txt")
	result, err := Run(files, cfg, outputPath)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.ExportedFiles != 0 {
		t.Fatalf("expected 0 exported files under StructureOnly, got %d", result.ExportedFiles)
	}
	if result.SkippedFiles != 0 {
		t.Fatalf("expected 0 skipped files under StructureOnly, got %d", result.SkippedFiles)
	}
	if len(result.Notes) != 0 {
		t.Fatalf("expected no notes under StructureOnly, got %v", result.Notes)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "=== STRUCTURE ===\n") {
		t.Fatalf("expected structure header, got %q", out[:min(40, len(out))])
	}
	if strings.Contains(out, "=== FILE:") {
		t.Fatalf("expected no FILE blocks under StructureOnly, got %q", out)
	}
	if result.TotalBytesWritten != int64(len(out)) {
		t.Fatalf("TotalBytesWritten = %d, want %d (structure block only)", result.TotalBytesWritten, len(out))
	}
}

func TestRunRejectsExistingOutputPath(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "existing.txt")
	if err := os.WriteFile(outputPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Run(nil, baseConfig(), outputPath)
	if err == nil || !strings.Contains(err.Error(), "overwrite is disabled") {
		t.Fatalf("expected overwrite-disabled error, got %v", err)
	}
}

func TestRunRejectsDirectoryOutputPath(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(nil, baseConfig(), dir)
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Fatalf("expected 'not a directory' error, got %v", err)
	}
}

func TestStreamContentHandlesUTF8AcrossChunkBoundary(t *testing.T) {
	// A multibyte rune ("é", 2 bytes: 0xC3 0xA9) split exactly at a
	// 16KiB chunk boundary must still decode correctly rather than
	// emitting a stray replacement character.
	filler := bytes.Repeat([]byte("a"), chunkSize-1)
	content := append(append([]byte{}, filler...), []byte("é")...)

	dir := t.TempDir()
	f := writeTempFile(t, dir, "utf8.txt", content)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	_, err := ExportFile(w, f, model.ExportConfig{MaxFileSizeKB: 1024 * 1024, LargeFileStrategy: model.Truncate})
	if err != nil {
		t.Fatalf("ExportFile() error: %v", err)
	}
	w.Flush()

	if !strings.Contains(buf.String(), "é") {
		t.Fatalf("expected boundary-split rune to decode intact")
	}
	if strings.Contains(buf.String(), "�") {
		t.Fatalf("expected no replacement character for valid boundary-split UTF-8")
	}
}
