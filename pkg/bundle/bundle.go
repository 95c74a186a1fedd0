package bundle

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a bundle directory does not exist or does not
// look like a collected bundle.
var ErrNotFound = errors.New("bundle not found")

// Bundle directory names are zero-padded timestamps, so lexicographic order
// equals chronological order.
var timestampName = regexp.MustCompile(`^\d{8}-\d{6}$`)

func Timestamp(t time.Time) string {
	return t.Format("20060102-150405")
}

// Latest returns the most recently created bundle directory under the
// artifacts root, which is the subdirectory with the greatest timestamp name.
func Latest(artifactsRoot string) (string, error) {
	entries, err := os.ReadDir(artifactsRoot)
	if err != nil {
		return "", errors.Wrapf(ErrNotFound, "failed to read artifacts root %s", artifactsRoot)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() && timestampName.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	if len(names) == 0 {
		return "", errors.Wrapf(ErrNotFound, "no bundle directories under %s", artifactsRoot)
	}

	sort.Strings(names)
	return filepath.Join(artifactsRoot, names[len(names)-1]), nil
}
