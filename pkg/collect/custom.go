package collect

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/crashkit/crashkit/pkg/bundle"
	"github.com/crashkit/crashkit/pkg/logger"
	"github.com/crashkit/crashkit/pkg/util"
	"github.com/pkg/errors"
)

// copyCustomGroups copies the user-declared extra source groups into
// custom/<group>/. Group names are processed in sorted order so the manifest
// is reproducible across runs with identical configuration.
func copyCustomGroups(opts *Options, bundleDir string, report *bundle.CopyReport, log *logger.CLILogger) map[string]bundle.CustomGroupReport {
	if len(opts.CustomGroups) == 0 {
		return nil
	}

	names := make([]string, 0, len(opts.CustomGroups))
	for name := range opts.CustomGroups {
		names = append(names, name)
	}
	sort.Strings(names)

	summary := map[string]bundle.CustomGroupReport{}
	for _, name := range names {
		group := opts.CustomGroups[name]
		destRoot := filepath.Join(bundleDir, bundle.CustomDir, name)
		if err := util.EnsureDir(destRoot); err != nil {
			log.Error(errors.Wrapf(err, "unable to create custom group dir %s", name))
			continue
		}
		summary[name] = copyCustomGroup(opts, group, destRoot, report)
	}

	return summary
}

func copyCustomGroup(opts *Options, group CustomGroup, destRoot string, report *bundle.CopyReport) bundle.CustomGroupReport {
	matched := []string{}

	for _, raw := range group.Files {
		src := util.ExpandPath(raw)
		copyFileWithLimit(src, filepath.Join(destRoot, safeRelPath(src)), report, opts.maxBytes(), opts.IncludeLargeDumps)
	}

	for _, raw := range group.Dirs {
		src := util.ExpandPath(raw)
		copyDirWithLimit(src, filepath.Join(destRoot, safeRelPath(src)), report, opts.maxBytes(), opts.IncludeLargeDumps)
	}

	for _, pattern := range group.Globs {
		expanded := util.ExpandPath(pattern)
		globMatches, err := doublestar.FilepathGlob(expanded)
		if err != nil {
			continue
		}
		for _, match := range globMatches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			matched = append(matched, match)
			copyFileWithLimit(match, filepath.Join(destRoot, safeRelPath(match)), report, opts.maxBytes(), opts.IncludeLargeDumps)
		}
	}

	return bundle.CustomGroupReport{
		Files:       emptyIfNil(group.Files),
		Dirs:        emptyIfNil(group.Dirs),
		Globs:       emptyIfNil(group.Globs),
		GlobMatches: matched,
	}
}

// safeRelPath turns an absolute source path into a path that can live under
// the group directory: the drive letter loses its colon and leading
// separators are stripped.
func safeRelPath(path string) string {
	vol := filepath.VolumeName(path)
	rest := strings.TrimLeft(path[len(vol):], `/\`)

	drive := strings.TrimSuffix(vol, ":")
	if drive != "" {
		return filepath.Join(drive, rest)
	}
	return rest
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
