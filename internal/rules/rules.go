// Package rules implements the layered Rule Engine (spec §4.C): a pure
// decision function over (relative path, absolute path, is-directory)
// composing hard-exclude, manual overrides, include/exclude globs and
// extensions, and an optional gitignore matcher. Grounded in the Rust
// original's domain/rules.rs, with glob compilation and gitignore
// matching swapped for the teacher's and pack's Go equivalents:
// doublestar for globs (pack: umputun-mpt/pkg/files, idelchi/go-gitignore)
// and go-git's gitignore package for .gitignore semantics (teacher's
// internal/discovery/ignore.go uses the same package).
package rules

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/foldstack/wexport/internal/errs"
	"github.com/foldstack/wexport/internal/model"
	"github.com/foldstack/wexport/internal/pathutil"
)

// Decision is the rule engine's verdict for one path.
type Decision int

const (
	DecisionInclude Decision = iota
	DecisionExclude
)

// Engine is a constructed, request-scoped rule engine (spec: "the rule
// engine is constructed per request; ... no state persists between
// operations").
type Engine struct {
	includeGlobs      []string
	excludeGlobs      []string
	includeExtensions map[string]struct{}
	excludeExtensions map[string]struct{}
	manual            map[string]model.ManualSelectionState
	gitignore         gitignore.Matcher
	useGitignore      bool
	warnings          []string
}

// New compiles an Engine from (root, config). Invalid glob patterns fail
// with E_RULE_INVALID_GLOB; gitignore parse problems are demoted to
// warnings rather than failures (spec §4.C, §7).
func New(root string, cfg model.ExportConfig) (*Engine, error) {
	if err := validateGlobs(cfg.IncludeGlobs); err != nil {
		return nil, err
	}
	if err := validateGlobs(cfg.ExcludeGlobs); err != nil {
		return nil, err
	}

	e := &Engine{
		includeGlobs:      cfg.IncludeGlobs,
		excludeGlobs:      cfg.ExcludeGlobs,
		includeExtensions: normalizeExtensions(cfg.IncludeExtensions),
		excludeExtensions: normalizeExtensions(cfg.ExcludeExtensions),
		manual:            normalizeManualSelections(cfg.ManualSelections),
		useGitignore:      cfg.UseGitignore,
	}

	if cfg.UseGitignore {
		matcher, warnings, err := buildGitignoreMatcher(root)
		if err != nil {
			return nil, err
		}
		e.gitignore = matcher
		e.warnings = warnings
	}

	return e, nil
}

// Warnings returns any non-fatal problems discovered while constructing
// the engine (currently: partial .gitignore parse failures).
func (e *Engine) Warnings() []string {
	return e.warnings
}

// ShouldInclude evaluates the nine-step precedence chain from spec §4.C.
func (e *Engine) ShouldInclude(relPath, absPath string, isDir bool) Decision {
	if isHardExcluded(relPath) {
		return DecisionExclude
	}

	if state, ok := e.manualStateFor(relPath); ok {
		switch state {
		case model.Include:
			return DecisionInclude
		case model.Exclude:
			return DecisionExclude
		case model.Inherit:
			// fall through to the remaining tiers
		}
	}

	includeGlobMatch := e.matchesIncludeGlob(relPath)
	if includeGlobMatch != nil && !*includeGlobMatch {
		return DecisionExclude
	}

	var includeExtMatch *bool
	if !isDir {
		includeExtMatch = e.matchesIncludeExtension(relPath)
	}
	if includeExtMatch != nil && !*includeExtMatch {
		return DecisionExclude
	}

	if (includeGlobMatch != nil && *includeGlobMatch) || (includeExtMatch != nil && *includeExtMatch) {
		return DecisionInclude
	}

	if !isDir && e.matchesExcludeExtension(relPath) {
		return DecisionExclude
	}

	if e.matchesExcludeGlob(relPath) {
		return DecisionExclude
	}

	if e.useGitignore && e.gitignore != nil {
		parts := splitPathParts(relPath)
		if len(parts) > 0 && e.gitignore.Match(parts, isDir) {
			return DecisionExclude
		}
	}

	return DecisionInclude
}

// IgnoredByGitignore reports the raw gitignore-tier verdict for relPath,
// independent of manual/glob/extension rules. Used by the tree scan
// (spec §4.F) to annotate nodes with "ignoredByGitignore" as its own flag
// rather than deriving it from the full ShouldInclude decision.
func (e *Engine) IgnoredByGitignore(relPath, absPath string, isDir bool) bool {
	if !e.useGitignore || e.gitignore == nil {
		return false
	}
	parts := splitPathParts(relPath)
	if len(parts) == 0 {
		return false
	}
	return e.gitignore.Match(parts, isDir)
}

func isHardExcluded(relPath string) bool {
	normalized := pathutil.NormalizeRelative(relPath)
	return normalized == ".git" || strings.HasPrefix(normalized, ".git/")
}

// manualStateFor implements the longest-prefix-on-"/"-boundary lookup
// described in spec §4.C.2 and §9 ("Manual-selection lookup").
func (e *Engine) manualStateFor(relPath string) (model.ManualSelectionState, bool) {
	key := pathutil.NormalizeRelative(relPath)
	if state, ok := e.manual[key]; ok {
		return state, true
	}

	bestLen := -1
	var bestState model.ManualSelectionState
	for manualKey, state := range e.manual {
		if !strings.HasPrefix(key, manualKey) {
			continue
		}
		if len(key) == len(manualKey) || key[len(manualKey)] != '/' {
			continue
		}
		if len(manualKey) > bestLen {
			bestLen = len(manualKey)
			bestState = state
		}
	}
	if bestLen < 0 {
		return "", false
	}
	return bestState, true
}

func (e *Engine) matchesIncludeGlob(relPath string) *bool {
	if len(e.includeGlobs) == 0 {
		return nil
	}
	result := anyGlobMatches(e.includeGlobs, relPath)
	return &result
}

func (e *Engine) matchesExcludeGlob(relPath string) bool {
	if len(e.excludeGlobs) == 0 {
		return false
	}
	return anyGlobMatches(e.excludeGlobs, relPath)
}

func (e *Engine) matchesIncludeExtension(relPath string) *bool {
	if len(e.includeExtensions) == 0 {
		return nil
	}
	result := hasMatchingExtension(e.includeExtensions, relPath)
	return &result
}

func (e *Engine) matchesExcludeExtension(relPath string) bool {
	if len(e.excludeExtensions) == 0 {
		return false
	}
	return hasMatchingExtension(e.excludeExtensions, relPath)
}

func hasMatchingExtension(extensions map[string]struct{}, relPath string) bool {
	lower := strings.ToLower(relPath)
	for ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func anyGlobMatches(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

func validateGlobs(patterns []string) error {
	for _, pattern := range patterns {
		if ok := doublestar.ValidatePattern(pattern); !ok {
			return errs.Newf(errs.RuleInvalidGlob, "invalid glob %q", pattern)
		}
	}
	return nil
}

func normalizeExtensions(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		v := strings.ToLower(strings.TrimSpace(item))
		if v == "" {
			continue
		}
		if !strings.HasPrefix(v, ".") {
			v = "." + v
		}
		out[v] = struct{}{}
	}
	return out
}

func normalizeManualSelections(source map[string]model.ManualSelectionState) map[string]model.ManualSelectionState {
	out := make(map[string]model.ManualSelectionState, len(source))
	for k, v := range source {
		out[pathutil.NormalizeRelative(strings.TrimSpace(k))] = v
	}
	return out
}

func buildGitignoreMatcher(root string) (gitignore.Matcher, []string, error) {
	var files []string
	var warnings []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Name() != ".gitignore" {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, nil, errs.Wrap(errs.IORead, "failed to discover .gitignore files", err)
	}

	sort.Slice(files, func(i, j int) bool {
		ri, _ := filepath.Rel(root, files[i])
		rj, _ := filepath.Rel(root, files[j])
		return pathutil.NormalizeRelative(ri) < pathutil.NormalizeRelative(rj)
	})

	if len(files) == 0 {
		return nil, nil, nil
	}

	var patterns []gitignore.Pattern
	for _, file := range files {
		rel, relErr := filepath.Rel(root, filepath.Dir(file))
		if relErr != nil {
			warnings = append(warnings, "Partial .gitignore parse error: "+relErr.Error())
			continue
		}
		domain := splitPathParts(pathutil.NormalizeRelative(rel))

		data, readErr := os.ReadFile(file)
		if readErr != nil {
			warnings = append(warnings, "Partial .gitignore parse error: "+readErr.Error())
			continue
		}

		for _, line := range strings.Split(string(data), "\n")  {
			trimmed := strings.TrimRight(line, "\r")
			if strings.TrimSpace(trimmed) == "" || strings.HasPrefix(strings.TrimSpace(trimmed), "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(trimmed, domain))
		}
	}

	return gitignore.NewMatcher(patterns), warnings, nil
}

func splitPathParts(relPath string) []string {
	normalized := pathutil.NormalizeRelative(relPath)
	if normalized == "" || normalized == "." {
		return nil
	}
	parts := strings.Split(normalized, "/")
	filtered := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}
