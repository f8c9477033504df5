// Package scan implements the single-level FS scan (spec §4.F): a lazy
// one-directory listing used for interactive tree browsing, so a host UI
// can expand one node at a time instead of paying for a full recursive
// walk. Grounded in the Rust original's infrastructure/fs_scan.rs and
// application/scanner.rs.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/foldstack/wexport/internal/errs"
	"github.com/foldstack/wexport/internal/model"
	"github.com/foldstack/wexport/internal/ordering"
	"github.com/foldstack/wexport/internal/pathutil"
	"github.com/foldstack/wexport/internal/rules"
)

// Result is one level of scanSingleLevel output.
type Result struct {
	Nodes    []*model.TreeNode
	Warnings []string
}

// SingleLevel reads exactly one directory (dir, absolute) and returns its
// entries as TreeNodes, ordered per internal/ordering, each annotated with
// whether the rule engine's gitignore tier would hide it.
func SingleLevel(root, dir string, limits model.ScanLimits, engine *rules.Engine) (Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, errs.Wrap(errs.IORead, "failed to read directory", err)
	}

	type item struct {
		absPath string
		relPath string
		isDir   bool
	}

	var items []item
	var warnings []string
	for _, entry := range entries {
		if len(items) >= limits.MaxFiles {
			warnings = append(warnings, fmt.Sprintf("Reached maxFiles limit (%d). Remaining entries were skipped.", limits.MaxFiles))
			break
		}
		abs := filepath.Join(dir, entry.Name())
		rel, relErr := pathutil.RelativeUnixPath(root, abs)
		if relErr != nil {
			continue
		}
		items = append(items, item{absPath: abs, relPath: rel, isDir: entry.IsDir()})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return ordering.Less(
			ordering.Entry{Path: items[i].relPath, IsDir: items[i].isDir},
			ordering.Entry{Path: items[j].relPath, IsDir: items[j].isDir},
		)
	})

	nodes := make([]*model.TreeNode, 0, len(items))
	for _, it := range items {
		node := &model.TreeNode{
			Path:     it.relPath,
			Name:     pathutil.FileNameOrFallback(it.relPath, it.relPath),
			IsDir:    it.isDir,
			Children: []*model.TreeNode{},
		}
		if it.isDir {
			node.ChildrenCount = nil
		} else {
			zero := 0
			node.ChildrenCount = &zero
		}
		if engine != nil {
			node.IgnoredByGitignore = engine.IgnoredByGitignore(it.relPath, it.absPath, it.isDir)
		}
		nodes = append(nodes, node)
	}

	return Result{Nodes: nodes, Warnings: warnings}, nil
}
