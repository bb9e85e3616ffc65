package checkpoints

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Checkpoint files are named network-snapshot-<digits>.pkl, where the
// digit run counts thousands of images seen at save time.
var snapshotNameRE = regexp.MustCompile(`^network-snapshot-(\d+)\.pkl$`)

// LocateLatest finds the most recent checkpoint under resultDir. Runs
// live in numeric-prefixed subdirectories; candidates are sorted
// lexicographically and the last one wins. When no checkpoint exists
// the sentinel ("", 0, nil) is returned rather than an error.
func LocateLatest(resultDir string) (string, float64, error) {
	matches, err := filepath.Glob(filepath.Join(resultDir, "0*", "network-*.pkl"))
	if err != nil {
		return "", 0, errors.Wrapf(err, "scanning result directory %q", resultDir)
	}
	if len(matches) == 0 {
		return "", 0, nil
	}
	sort.Strings(matches)
	latest := matches[len(matches)-1]

	m := snapshotNameRE.FindStringSubmatch(filepath.Base(latest))
	if m == nil {
		return "", 0, errors.Errorf("unexpected checkpoint filename %q", latest)
	}
	kimg, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, errors.Wrapf(err, "parsing iteration count from %q", latest)
	}
	return latest, float64(kimg), nil
}
