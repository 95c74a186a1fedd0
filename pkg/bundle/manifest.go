package bundle

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"

	"github.com/pkg/errors"
)

// CopiedFile records one successful copy as a source→dest pair.
type CopiedFile struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
}

// SkippedFile records a candidate that was excluded by the size policy.
type SkippedFile struct {
	Path  string `json:"path"`
	Size  int64  `json:"size_bytes"`
	Limit int64  `json:"limit_bytes"`
}

// MissingFile records a configured source that did not exist, was not
// readable, or failed to copy.
type MissingFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// CopyReport accumulates the three-way bookkeeping for one collection run.
// Every candidate file that matched a pattern under an existing root lands in
// exactly one of the three lists.
type CopyReport struct {
	Copied       []CopiedFile  `json:"copied"`
	SkippedLarge []SkippedFile `json:"skipped_large"`
	Missing      []MissingFile `json:"missing"`
}

func NewCopyReport() *CopyReport {
	return &CopyReport{
		Copied:       []CopiedFile{},
		SkippedLarge: []SkippedFile{},
		Missing:      []MissingFile{},
	}
}

func (r *CopyReport) AddCopied(src string, dest string) {
	r.Copied = append(r.Copied, CopiedFile{Src: src, Dest: dest})
}

func (r *CopyReport) AddSkippedLarge(path string, size int64, limit int64) {
	r.SkippedLarge = append(r.SkippedLarge, SkippedFile{Path: path, Size: size, Limit: limit})
}

func (r *CopyReport) AddMissing(path string, reason string) {
	r.Missing = append(r.Missing, MissingFile{Path: path, Reason: reason})
}

// SourcePaths is the resolved set of source roots a collection ran against.
type SourcePaths struct {
	WERQueue          string `json:"wer_queue"`
	LiveKernelReports string `json:"livekernel_reports"`
	Minidump          string `json:"minidump"`
}

// CustomGroupReport echoes what a custom group was configured with and what
// its globs matched.
type CustomGroupReport struct {
	Files       []string `json:"files"`
	Dirs        []string `json:"dirs"`
	Globs       []string `json:"globs"`
	GlobMatches []string `json:"glob_matches"`
}

// Manifest is the single JSON document written at the end of a collection
// run. It is immutable once written; summarize reads it read-only.
type Manifest struct {
	Version           string                       `json:"version"`
	RunID             string                       `json:"run_id"`
	OutputDir         string                       `json:"output_dir"`
	LatestN           int                          `json:"latest_n"`
	LatestLiveKernel  int                          `json:"latest_livekernel"`
	LatestMinidump    int                          `json:"latest_minidump"`
	EventLogHours     int                          `json:"eventlog_hours"`
	IncludeLargeDumps bool                         `json:"include_large_dumps"`
	MaxDumpGB         int                          `json:"max_dump_gb"`
	WERPatterns       []string                     `json:"wer_patterns"`
	LiveKernelFolders []string                     `json:"livekernel_folders"`
	Paths             SourcePaths                  `json:"paths"`
	ConfigPath        string                       `json:"config_path,omitempty"`
	EventLogs         []string                     `json:"event_logs"`
	Custom            map[string]CustomGroupReport `json:"custom,omitempty"`
	CopyReport        *CopyReport                  `json:"copy_report"`
	ManifestPath      string                       `json:"manifest_path"`
}

// WriteManifest serializes the manifest into the bundle root. It is called
// exactly once, after all groups have completed.
func WriteManifest(bundleDir string, manifest *Manifest) error {
	manifest.ManifestPath = filepath.Join(bundleDir, ManifestFile)

	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest")
	}

	if err := ioutil.WriteFile(manifest.ManifestPath, b, 0644); err != nil {
		return errors.Wrap(err, "failed to write manifest")
	}

	return nil
}

// LoadManifest reads a bundle's manifest. A missing or unreadable manifest is
// not an error for the caller; it simply returns nil.
func LoadManifest(bundleDir string) *Manifest {
	b, err := ioutil.ReadFile(filepath.Join(bundleDir, ManifestFile))
	if err != nil {
		return nil
	}

	var manifest Manifest
	if err := json.Unmarshal(b, &manifest); err != nil {
		return nil
	}

	return &manifest
}
