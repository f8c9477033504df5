// Package walker implements the Selection Walker (spec §4.G): a bounded,
// deterministically ordered, fully synchronous recursive traversal that
// consults the Rule Engine and materialises the ordered file list for
// export. Grounded in the Rust original's application/selection.rs, which
// leans on walkdir's own max_depth and directory-skipping behaviour; here
// the traversal is hand-rolled (plain recursive os.ReadDir calls) so that
// both the depth ceiling and the "excluded directory prunes its subtree"
// rule are explicit rather than implicit in a library's iterator.
//
// This is also a deliberate redesign versus the teacher's own
// internal/discovery.Walk, which fans a directory queue out across a
// goroutine worker pool. Spec §5 mandates a synchronous, no-background-task
// execution model, so the traversal here is single-threaded throughout.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/foldstack/wexport/internal/model"
	"github.com/foldstack/wexport/internal/ordering"
	"github.com/foldstack/wexport/internal/pathutil"
	"github.com/foldstack/wexport/internal/rules"
)

// Run is the outcome of a full selection walk.
type Run struct {
	Files         []model.SelectedFile
	IncludedFiles int
	ExcludedFiles int
	Warnings      []string
}

// Collect walks root (already canonicalised) and returns the ordered set
// of files an export should include.
func Collect(root string, engine *rules.Engine, limits model.ScanLimits) (Run, error) {
	run := Run{Warnings: append([]string{}, engine.Warnings()...)}
	depthWarningEmitted := false
	stop := false

	type dirEntry struct {
		absPath string
		relPath string
		depth   int
	}

	// walkDir processes one directory's children. dir.depth is the
	// directory's own depth (root is 0). An entry's depth equals its
	// parent's depth + 1. Mirroring WalkDir::max_depth semantics: a
	// directory at depth == limits.MaxDepth is the deepest level actually
	// listed, so its own children (depth == MaxDepth+1) are never yielded
	// at all, not merely pruned by rule-engine decision.
	var walkDir func(dirEntry) error
	walkDir = func(dir dirEntry) error {
		if stop {
			return nil
		}

		entries, err := os.ReadDir(dir.absPath)
		if err != nil {
			return nil
		}

		if dir.depth >= limits.MaxDepth {
			if len(entries) > 0 && !depthWarningEmitted {
				run.Warnings = append(run.Warnings, fmt.Sprintf("Reached maxDepth limit (%d). Skipped deeper traversal.", limits.MaxDepth))
				depthWarningEmitted = true
			}
			return nil
		}

		type child struct {
			absPath string
			relPath string
			isDir   bool
		}
		children := make([]child, 0, len(entries))
		for _, e := range entries {
			abs := filepath.Join(dir.absPath, e.Name())
			rel, relErr := pathutil.RelativeUnixPath(root, abs)
			if relErr != nil {
				continue
			}
			children = append(children, child{absPath: abs, relPath: rel, isDir: e.IsDir()})
		}

		sort.SliceStable(children, func(i, j int) bool {
			return ordering.Less(
				ordering.Entry{Path: children[i].relPath, IsDir: children[i].isDir},
				ordering.Entry{Path: children[j].relPath, IsDir: children[j].isDir},
			)
		})

		childDepth := dir.depth + 1

		for _, c := range children {
			if stop {
				return nil
			}

			decision := engine.ShouldInclude(c.relPath, c.absPath, c.isDir)

			if c.isDir {
				// An excluded directory prunes its subtree (spec §4.G):
				// skip recursion entirely rather than relying on a
				// filepath.WalkDir-style SkipDir signal, since this
				// traversal is hand-rolled rather than built on WalkDir.
				if decision == rules.DecisionExclude {
					continue
				}
				if err := walkDir(dirEntry{absPath: c.absPath, relPath: c.relPath, depth: childDepth}); err != nil {
					return err
				}
				continue
			}

			switch decision {
			case rules.DecisionInclude:
				info, statErr := os.Stat(c.absPath)
				var size int64
				if statErr == nil {
					size = info.Size()
				}
				run.Files = append(run.Files, model.SelectedFile{
					AbsPath: c.absPath,
					RelPath: c.relPath,
					Size:    size,
				})
				run.IncludedFiles++
			case rules.DecisionExclude:
				run.ExcludedFiles++
			}

			if run.IncludedFiles+run.ExcludedFiles >= limits.MaxFiles {
				run.Warnings = append(run.Warnings, fmt.Sprintf("Reached maxFiles limit (%d). Remaining files were skipped.", limits.MaxFiles))
				stop = true
				return nil
			}
		}

		return nil
	}

	if err := walkDir(dirEntry{absPath: root, relPath: "", depth: 0}); err != nil {
		return Run{}, err
	}

	sort.SliceStable(run.Files, func(i, j int) bool {
		return ordering.CompareFlat(run.Files[i].RelPath, run.Files[j].RelPath) < 0
	})

	return run, nil
}
