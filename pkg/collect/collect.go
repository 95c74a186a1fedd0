package collect

import (
	"path/filepath"
	"strings"

	"github.com/crashkit/crashkit/pkg/bundle"
	"github.com/crashkit/crashkit/pkg/logger"
	"github.com/crashkit/crashkit/pkg/util"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

// Collect runs one collection: it creates a fresh timestamped bundle
// directory, copies the selected artifacts from each source group into it,
// exports event logs, and writes the manifest exactly once at the end.
//
// Groups run in a fixed order (WER queue, livekernel reports, minidumps,
// custom groups, event logs) so manifests are reproducible. Per-file
// failures are recorded in the copy report and never abort the run.
func Collect(opts Options, log *logger.CLILogger) (*bundle.Manifest, error) {
	opts.complete()

	bundleDir := opts.OutputDir
	if bundleDir == "" {
		bundleDir = filepath.Join(opts.ArtifactsRoot, bundle.Timestamp(opts.Now()))
	}
	for _, sub := range []string{"", bundle.WERDir, bundle.LiveKernelDir, bundle.MinidumpDir} {
		if err := util.EnsureDir(filepath.Join(bundleDir, sub)); err != nil {
			return nil, errors.Wrap(err, "failed to create bundle dir")
		}
	}

	report := bundle.NewCopyReport()

	werQueue := util.ExpandPath(opts.Paths.WERQueue)
	liveBase := util.ExpandPath(opts.Paths.LiveKernelReports)
	miniBase := util.ExpandPath(opts.Paths.Minidump)

	// WER report queue: whole report folders, newest first
	log.ChildActionWithoutSpinner("collecting WER reports from %s", werQueue)
	werDirs, err := latestDirs(werQueue, opts.WERPatterns, opts.LatestN)
	if err != nil {
		report.AddMissing(werQueue, statReason(err))
	}
	for _, dir := range werDirs {
		dest := filepath.Join(bundleDir, bundle.WERDir, filepath.Base(dir))
		copyDirWithLimit(dir, dest, report, opts.maxBytes(), opts.IncludeLargeDumps)
	}

	// live kernel reports: newest files per category folder
	log.ChildActionWithoutSpinner("collecting live kernel reports from %s", liveBase)
	for _, folder := range opts.LiveKernelFolders {
		src := filepath.Join(liveBase, folder)
		files, err := latestFiles(src, opts.LatestLiveKernel)
		if err != nil {
			report.AddMissing(src, statReason(err))
			continue
		}
		for _, file := range files {
			dest := filepath.Join(bundleDir, bundle.LiveKernelDir, folder, filepath.Base(file))
			copyFileWithLimit(file, dest, report, opts.maxBytes(), opts.IncludeLargeDumps)
		}
	}

	// minidumps: newest direct children
	log.ChildActionWithoutSpinner("collecting minidumps from %s", miniBase)
	miniFiles, err := latestFiles(miniBase, opts.LatestMinidump)
	if err != nil {
		report.AddMissing(miniBase, statReason(err))
	}
	for _, file := range miniFiles {
		dest := filepath.Join(bundleDir, bundle.MinidumpDir, filepath.Base(file))
		copyFileWithLimit(file, dest, report, opts.maxBytes(), opts.IncludeLargeDumps)
	}

	custom := copyCustomGroups(&opts, bundleDir, report, log)

	log.ChildActionWithoutSpinner("exporting event logs (last %d hours)", opts.EventLogHours)
	eventLogs := exportEventLogs(&opts, filepath.Join(bundleDir, bundle.EventLogDir), log)

	manifest := &bundle.Manifest{
		Version:           bundle.ManifestVersion,
		RunID:             strings.ToLower(ksuid.New().String()),
		OutputDir:         bundleDir,
		LatestN:           opts.LatestN,
		LatestLiveKernel:  opts.LatestLiveKernel,
		LatestMinidump:    opts.LatestMinidump,
		EventLogHours:     opts.EventLogHours,
		IncludeLargeDumps: opts.IncludeLargeDumps,
		MaxDumpGB:         opts.MaxDumpGB,
		WERPatterns:       opts.WERPatterns,
		LiveKernelFolders: opts.LiveKernelFolders,
		Paths: bundle.SourcePaths{
			WERQueue:          werQueue,
			LiveKernelReports: liveBase,
			Minidump:          miniBase,
		},
		ConfigPath: opts.ConfigPath,
		EventLogs:  eventLogs,
		Custom:     custom,
		CopyReport: report,
	}

	if err := bundle.WriteManifest(bundleDir, manifest); err != nil {
		return nil, err
	}

	return manifest, nil
}
