package collect

import (
	"os"
	"path/filepath"
	"sort"
)

type candidate struct {
	path    string
	modTime int64
	name    string
}

// rankLatest orders candidates by modification time descending, names
// ascending on equal times, and keeps the first n. A non-positive n selects
// nothing. The returned order is the copy order, so equal inputs always
// produce identical copy reports.
func rankLatest(candidates []candidate, n int) []candidate {
	if n <= 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].modTime != candidates[j].modTime {
			return candidates[i].modTime > candidates[j].modTime
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// latestDirs returns the n most recently modified directories under base
// whose names match any of the glob patterns. Patterns are ordered and
// OR-combined; a directory matching several patterns is considered once.
func latestDirs(base string, patterns []string, n int) ([]string, error) {
	if _, err := os.Stat(base); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	candidates := []candidate{}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(base, pattern))
		if err != nil {
			// only bad patterns error here; skip and keep the rest
			continue
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true

			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				continue
			}
			candidates = append(candidates, candidate{path: match, modTime: info.ModTime().UnixNano(), name: info.Name()})
		}
	}

	return candidatePaths(rankLatest(candidates, n)), nil
}

// latestFiles returns the n most recently modified direct children of base
// that are regular files.
func latestFiles(base string, n int) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}

	candidates := []candidate{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(base, entry.Name()),
			modTime: info.ModTime().UnixNano(),
			name:    entry.Name(),
		})
	}

	return candidatePaths(rankLatest(candidates, n)), nil
}

func candidatePaths(candidates []candidate) []string {
	paths := make([]string, 0, len(candidates))
	for _, c := range candidates {
		paths = append(paths, c.path)
	}
	return paths
}
