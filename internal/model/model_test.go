package model

import "testing"

func TestMaxBytesDerivesFromKB(t *testing.T) {
	cfg := ExportConfig{MaxFileSizeKB: 4}
	if got := cfg.MaxBytes(); got != 4*1024 {
		t.Fatalf("MaxBytes() = %d, want %d", got, 4*1024)
	}
}

func TestDefaultScanLimitsMatchSpec(t *testing.T) {
	limits := DefaultScanLimits()
	if limits.MaxFiles != 100_000 {
		t.Fatalf("MaxFiles = %d, want 100000", limits.MaxFiles)
	}
	if limits.MaxDepth != 64 {
		t.Fatalf("MaxDepth = %d, want 64", limits.MaxDepth)
	}
}
