package summarize

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crashkit/crashkit/pkg/bundle"
	"github.com/crashkit/crashkit/pkg/logger"
	"github.com/crashkit/crashkit/pkg/wer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logger.CLILogger {
	log := logger.NewCLILogger(os.Stdout)
	log.Silence()
	return log
}

func writeWERReport(t *testing.T, bundleDir string, folder string, content string) {
	t.Helper()
	dir := filepath.Join(bundleDir, bundle.WERDir, folder)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Report.wer"), []byte(content), 0644))
}

func testBundle(t *testing.T) string {
	t.Helper()
	bundleDir := filepath.Join(t.TempDir(), "20250301-100000")
	require.NoError(t, os.MkdirAll(filepath.Join(bundleDir, bundle.WERDir), 0755))

	writeWERReport(t, bundleDir, "Kernel_193_a", "EventType=LiveKernelEvent\nSig[0].Value=193\nSig[1].Value=80e\nDumpFile=C:\\dump.dmp\n")
	writeWERReport(t, bundleDir, "Kernel_193_b", "EventType=LiveKernelEvent\nSig[0].Value=193\nSig[1].Value=80e\n")
	writeWERReport(t, bundleDir, "Kernel_1a8_c", "EventType=LiveKernelEvent\nSig[0].Value=1a8\n")
	writeWERReport(t, bundleDir, "Broken_d", "no equals signs here\n")

	require.NoError(t, os.MkdirAll(filepath.Join(bundleDir, bundle.LiveKernelDir, "WATCHDOG"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(bundleDir, bundle.LiveKernelDir, "WATCHDOG", "WATCHDOG-1.dmp"), make([]byte, 2048), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(bundleDir, bundle.LiveKernelDir, "WATCHDOG", "WATCHDOG-2.dmp"), make([]byte, 512), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(bundleDir, bundle.MinidumpDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(bundleDir, bundle.MinidumpDir, "030125-1234-01.dmp"), make([]byte, 1024), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(bundleDir, bundle.MinidumpDir, "notes.txt"), []byte("not a dump"), 0644))

	return bundleDir
}

func Test_Build(t *testing.T) {
	bundleDir := testBundle(t)
	now := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)

	summary, err := Build(bundleDir, now)
	require.NoError(t, err)

	assert.Equal(t, "20250301-110000", summary.GeneratedAt)
	assert.Equal(t, bundleDir, summary.BundleDir)

	// the unparsable report counts toward the total but not the records
	assert.Equal(t, 4, summary.ReportCount)
	assert.Len(t, summary.Reports, 3)

	assert.Equal(t, 4, summary.ArtifactStats.WERReportCount)
	assert.Equal(t, 2, summary.ArtifactStats.LiveKernelFiles)
	assert.Equal(t, 1, summary.ArtifactStats.MinidumpFiles)

	require.NotNil(t, summary.ArtifactStats.LargestLiveKernelFile)
	assert.Equal(t, filepath.Join(bundleDir, bundle.LiveKernelDir, "WATCHDOG", "WATCHDOG-1.dmp"), summary.ArtifactStats.LargestLiveKernelFile.Path)
	assert.Equal(t, "2KiB", summary.ArtifactStats.LargestLiveKernelFile.Size)

	require.Len(t, summary.SignatureCounts, 2)
	assert.Equal(t, "Sig0=193 Sig1=80e", summary.SignatureCounts[0].Signature)
	assert.Equal(t, 2, summary.SignatureCounts[0].Count)
	assert.Equal(t, "Sig0=1a8", summary.SignatureCounts[1].Signature)
}

func Test_BuildNotFound(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		_, err := Build(filepath.Join(t.TempDir(), "nope"), time.Now())
		require.Error(t, err)
		assert.ErrorIs(t, err, bundle.ErrNotFound)
	})

	t.Run("no wer structure", func(t *testing.T) {
		_, err := Build(t.TempDir(), time.Now())
		require.Error(t, err)
		assert.ErrorIs(t, err, bundle.ErrNotFound)
	})
}

func Test_BuildIdempotent(t *testing.T) {
	bundleDir := testBundle(t)
	now := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)

	first, err := Build(bundleDir, now)
	require.NoError(t, err)
	second, err := Build(bundleDir, now)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))

	// a later run differs only in generated_at
	third, err := Build(bundleDir, now.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, first.GeneratedAt, third.GeneratedAt)
	third.GeneratedAt = first.GeneratedAt
	thirdJSON, err := json.Marshal(third)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(thirdJSON))
}

func Test_SummarizeWritesFiles(t *testing.T) {
	bundleDir := testBundle(t)

	result, err := Summarize(bundleDir, "", discardLogger())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(bundleDir, bundle.SummaryJSONFile), result.SummaryJSON)
	assert.FileExists(t, result.SummaryJSON)
	assert.FileExists(t, result.SummaryText)

	var summary Summary
	b, err := ioutil.ReadFile(result.SummaryJSON)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &summary))
	assert.Equal(t, 4, summary.ReportCount)
}

func Test_TextRoundTrip(t *testing.T) {
	// the text summary must be derivable from the JSON summary alone
	bundleDir := testBundle(t)

	result, err := Summarize(bundleDir, "", discardLogger())
	require.NoError(t, err)

	jsonBytes, err := ioutil.ReadFile(result.SummaryJSON)
	require.NoError(t, err)
	textBytes, err := ioutil.ReadFile(result.SummaryText)
	require.NoError(t, err)

	var summary Summary
	require.NoError(t, json.Unmarshal(jsonBytes, &summary))

	assert.Equal(t, string(textBytes), RenderText(&summary))
}

func Test_SummarizeEmbedsManifest(t *testing.T) {
	bundleDir := testBundle(t)

	manifest := &bundle.Manifest{
		Version:    bundle.ManifestVersion,
		OutputDir:  bundleDir,
		LatestN:    3,
		CopyReport: bundle.NewCopyReport(),
	}
	require.NoError(t, bundle.WriteManifest(bundleDir, manifest))

	summary, err := Build(bundleDir, time.Now())
	require.NoError(t, err)

	require.NotNil(t, summary.Manifest)
	assert.Equal(t, 3, summary.Manifest.LatestN)
}

func Test_SummarizeSeparateOutputDir(t *testing.T) {
	bundleDir := testBundle(t)
	outDir := filepath.Join(t.TempDir(), "out")

	result, err := Summarize(bundleDir, outDir, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, bundle.SummaryJSONFile), result.SummaryJSON)
	assert.FileExists(t, result.SummaryJSON)
	// the bundle itself stays untouched
	assert.NoFileExists(t, filepath.Join(bundleDir, bundle.SummaryJSONFile))
}

func Test_RenderTextSections(t *testing.T) {
	summary := &Summary{
		GeneratedAt: "20250301-110000",
		BundleDir:   "/tmp/b",
		ArtifactStats: ArtifactStats{
			LiveKernelFiles: 1,
			MinidumpFiles:   2,
		},
		ReportCount: 3,
		SignatureCounts: []wer.SignatureCount{
			{Signature: "Sig0=193", Count: 2},
		},
		GPU: []map[string]string{
			{"Name": "NVIDIA GeForce RTX 3080", "DriverVersion": "31.0.15"},
		},
		OS: map[string]string{"Caption": "Microsoft Windows 11 Pro", "BuildNumber": "22631"},
	}

	text := RenderText(summary)

	assert.Contains(t, text, "WER reports: 3")
	assert.Contains(t, text, "Top signatures:\n- Sig0=193 (2)")
	assert.Contains(t, text, "- NVIDIA GeForce RTX 3080 DriverVersion=31.0.15 DriverDate=Unknown")
	// OS keys render sorted
	assert.Contains(t, text, "OS:\n- BuildNumber: 22631\n- Caption: Microsoft Windows 11 Pro")
}
