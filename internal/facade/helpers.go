package facade

import (
	"os"
	"strings"

	"github.com/foldstack/wexport/internal/pathutil"
)

// statDir reports whether path exists and is a directory.
func statDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// pathComponentDepth counts the path components separating target from
// root, used to decide whether scanChildren has run past maxDepth
// (spec §4.F treats root itself as depth 0, matching the Selection
// Walker's own root-at-depth-0 convention).
func pathComponentDepth(root, target string) (int, error) {
	rel, err := pathutil.RelativeUnixPath(root, target)
	if err != nil {
		return 0, err
	}
	if rel == "" || rel == "." {
		return 0, nil
	}
	return len(strings.Split(rel, "/")), nil
}
