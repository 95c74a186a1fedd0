package summarize

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crashkit/crashkit/pkg/bundle"
	"github.com/crashkit/crashkit/pkg/logger"
	"github.com/crashkit/crashkit/pkg/sysinfo"
	"github.com/crashkit/crashkit/pkg/util"
	"github.com/crashkit/crashkit/pkg/wer"
	"github.com/docker/go-units"
	"github.com/pkg/errors"
)

// FileStat describes the largest file found in a dump directory. The size is
// rendered human-readable at build time so the text summary derives from the
// JSON summary alone.
type FileStat struct {
	Path string `json:"path"`
	Size string `json:"size"`
}

type ArtifactStats struct {
	WERReportCount        int       `json:"wer_report_count"`
	LiveKernelFiles       int       `json:"livekernel_files"`
	MinidumpFiles         int       `json:"minidump_files"`
	LargestLiveKernelFile *FileStat `json:"largest_livekernel_file,omitempty"`
	LargestMinidumpFile   *FileStat `json:"largest_minidump_file,omitempty"`
}

// Summary is the derived triage view over one bundle. It is recomputed fully
// in memory on every run and serialized once.
type Summary struct {
	GeneratedAt     string               `json:"generated_at"`
	BundleDir       string               `json:"bundle_dir"`
	ArtifactStats   ArtifactStats        `json:"artifact_stats"`
	ReportCount     int                  `json:"report_count"`
	SignatureCounts []wer.SignatureCount `json:"signature_counts"`
	Reports         []*wer.Report        `json:"reports"`
	GPU             []map[string]string  `json:"gpu"`
	OS              map[string]string    `json:"os"`
	SysInfo         *sysinfo.SysInfo     `json:"sysinfo"`
	MemoryCSV       *sysinfo.MemoryCSV   `json:"memory_csv"`
	Manifest        *bundle.Manifest     `json:"manifest"`
}

type Result struct {
	SummaryJSON string
	SummaryText string
}

// Build computes the summary for a bundle. The bundle must exist and have
// been produced by a collection run (it needs the wer/ structure); that is
// the one hard failure in the pipeline.
func Build(bundleDir string, now time.Time) (*Summary, error) {
	info, err := os.Stat(bundleDir)
	if err != nil || !info.IsDir() {
		return nil, errors.Wrapf(bundle.ErrNotFound, "bundle directory %s", bundleDir)
	}

	werDir := filepath.Join(bundleDir, bundle.WERDir)
	if info, err := os.Stat(werDir); err != nil || !info.IsDir() {
		return nil, errors.Wrapf(bundle.ErrNotFound, "%s has no %s directory", bundleDir, bundle.WERDir)
	}

	reportPaths := findReportFiles(werDir)
	reports := make([]*wer.Report, 0, len(reportPaths))
	for _, path := range reportPaths {
		report, err := wer.ParseReportFile(path)
		if err != nil {
			// dropped from clustering, still counted below
			continue
		}
		reports = append(reports, report)
	}

	summary := &Summary{
		GeneratedAt:     bundle.Timestamp(now),
		BundleDir:       bundleDir,
		ArtifactStats:   collectArtifactStats(bundleDir, len(reportPaths)),
		ReportCount:     len(reportPaths),
		SignatureCounts: wer.Cluster(reports),
		Reports:         reports,
		GPU:             sysinfo.GPUInfo(),
		OS:              sysinfo.OSInfo(),
		SysInfo:         sysinfo.LoadSysInfo(bundleDir),
		MemoryCSV:       sysinfo.LoadMemoryCSV(bundleDir),
		Manifest:        bundle.LoadManifest(bundleDir),
	}

	return summary, nil
}

// Summarize builds the summary for a bundle and writes summary.json and
// summary.txt into outputDir (the bundle itself when outputDir is empty).
func Summarize(bundleDir string, outputDir string, log *logger.CLILogger) (*Result, error) {
	summary, err := Build(bundleDir, time.Now())
	if err != nil {
		return nil, err
	}

	if outputDir == "" {
		outputDir = bundleDir
	}
	if err := util.EnsureDir(outputDir); err != nil {
		return nil, err
	}

	result := &Result{
		SummaryJSON: filepath.Join(outputDir, bundle.SummaryJSONFile),
		SummaryText: filepath.Join(outputDir, bundle.SummaryTextFile),
	}

	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal summary")
	}
	if err := ioutil.WriteFile(result.SummaryJSON, b, 0644); err != nil {
		return nil, errors.Wrap(err, "failed to write summary json")
	}

	if err := ioutil.WriteFile(result.SummaryText, []byte(RenderText(summary)), 0644); err != nil {
		return nil, errors.Wrap(err, "failed to write summary text")
	}

	log.ChildActionWithoutSpinner("parsed %d WER reports, %d signature clusters", summary.ReportCount, len(summary.SignatureCounts))

	return result, nil
}

// findReportFiles returns all Report.wer files under the wer/ tree, in a
// stable walk order.
func findReportFiles(werDir string) []string {
	paths := []string{}
	filepath.Walk(werDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.EqualFold(info.Name(), "Report.wer") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

// collectArtifactStats counts files in the dump subdirectories and finds the
// largest file of each kind in a single pass, first-encountered winning ties.
func collectArtifactStats(bundleDir string, reportCount int) ArtifactStats {
	stats := ArtifactStats{WERReportCount: reportCount}

	stats.LiveKernelFiles, stats.LargestLiveKernelFile = scanDir(filepath.Join(bundleDir, bundle.LiveKernelDir), "")
	stats.MinidumpFiles, stats.LargestMinidumpFile = scanDir(filepath.Join(bundleDir, bundle.MinidumpDir), ".dmp")

	return stats
}

func scanDir(dir string, ext string) (int, *FileStat) {
	count := 0
	largestPath := ""
	var largestSize int64

	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}
		count++
		if largestPath == "" || info.Size() > largestSize {
			largestPath = path
			largestSize = info.Size()
		}
		return nil
	})

	if largestPath == "" {
		return count, nil
	}
	return count, &FileStat{Path: largestPath, Size: units.BytesSize(float64(largestSize))}
}
