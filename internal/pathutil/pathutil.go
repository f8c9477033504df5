// Package pathutil provides the root-canonicalisation and containment
// primitives every other component builds on, adapted from the teacher's
// internal/discovery normalisation helpers and from the Rust original's
// infrastructure/pathing.rs (canonicalize_dir, ensure_under_root,
// relative_unix_path, file_name_or_fallback).
package pathutil

import (
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/foldstack/wexport/internal/errs"
)

// CanonicalizeDir resolves path to an absolute, symlink-resolved directory.
func CanonicalizeDir(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errs.New(errs.RootRequired, "rootPath is required")
	}

	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", errs.Wrap(errs.RootInvalid, "rootPath could not be resolved", err)
	}

	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errs.Wrap(errs.RootInvalid, "rootPath could not be resolved", err)
	}

	info, err := os.Stat(real)
	if err != nil {
		return "", errs.Wrap(errs.RootInvalid, "rootPath could not be resolved", err)
	}
	if !info.IsDir() {
		return "", errs.New(errs.RootNotDir, "rootPath must be a directory")
	}

	return real, nil
}

// EnsureUnderRoot resolves candidate (which may be relative to root, may
// contain traversal segments, or may be a symlink) and fails with
// E_PATH_OUTSIDE_ROOT unless the resolved path has root as a path-component
// prefix. securejoin.SecureJoin performs the symlink-aware containment
// resolution so a crafted "../" segment or a symlink hop cannot escape root.
func EnsureUnderRoot(root, candidate string) (string, error) {
	trimmed := strings.TrimSpace(candidate)
	lexical := trimmed
	if !filepath.IsAbs(lexical) {
		lexical = filepath.Join(root, lexical)
	}
	if !isUnderRoot(root, filepath.Clean(lexical)) {
		return "", errs.New(errs.PathOutsideRoot, "path must be under rootPath")
	}

	joined, err := securejoin.SecureJoin(root, trimmed)
	if err != nil {
		return "", errs.Wrap(errs.PathOutsideRoot, "path could not be resolved under rootPath", err)
	}

	if !isUnderRoot(root, joined) {
		return "", errs.New(errs.PathOutsideRoot, "path must be under rootPath")
	}

	return joined, nil
}

func isUnderRoot(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RelativeUnixPath strips the root prefix from abs and returns a
// POSIX-delimited, "./"-free relative path.
func RelativeUnixPath(root, abs string) (string, error) {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", errs.Wrap(errs.PathOutsideRoot, "path is not under rootPath", err)
	}
	return NormalizeRelative(rel), nil
}

// NormalizeRelative applies the backslash-to-slash, leading-"./"-strip,
// surrounding-"/"-strip normalisation used for every relative path in the
// system and for manual-selection keys (spec §3: keys are "trimmed,
// backslash->slash, leading './' stripped, surrounding slashes stripped"),
// matching the original's normalize_key (domain/rules.rs: .trim_matches('/')
// after the leading-"./" strip).
func NormalizeRelative(rel string) string {
	normalized := strings.ReplaceAll(rel, "\\", "/")
	normalized = filepath.ToSlash(normalized)
	normalized = strings.TrimPrefix(normalized, "./")
	normalized = strings.Trim(normalized, "/")
	return normalized
}

// FileNameOrFallback returns the final path component, or fallback if empty.
func FileNameOrFallback(path, fallback string) string {
	name := filepath.Base(filepath.ToSlash(path))
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}
