package bundle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Timestamp(t *testing.T) {
	ts := Timestamp(time.Date(2025, 2, 5, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "20250205-120000", ts)
}

func Test_Latest(t *testing.T) {
	tests := []struct {
		name     string
		dirs     []string
		files    []string
		expected string
		wantErr  bool
	}{
		{
			name:     "picks greatest timestamp",
			dirs:     []string{"20250101-000000", "20250205-120000", "20250110-080000"},
			expected: "20250205-120000",
		},
		{
			name:     "ignores non-timestamp names",
			dirs:     []string{"20250101-000000", "doctor-20250301-000000", "scratch"},
			expected: "20250101-000000",
		},
		{
			name:    "no bundles",
			dirs:    []string{"scratch"},
			wantErr: true,
		},
		{
			name:     "ignores plain files",
			dirs:     []string{"20250101-000000"},
			files:    []string{"20250301-000000"},
			expected: "20250101-000000",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			root := t.TempDir()
			for _, dir := range test.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(root, dir), 0755))
			}
			for _, file := range test.files {
				require.NoError(t, os.WriteFile(filepath.Join(root, file), []byte("x"), 0644))
			}

			latest, err := Latest(root)
			if test.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, test.expected), latest)
		})
	}
}

func Test_LatestMissingRoot(t *testing.T) {
	_, err := Latest(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_ManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	report := NewCopyReport()
	report.AddCopied("/src/a.dmp", filepath.Join(dir, "minidump", "a.dmp"))
	report.AddSkippedLarge("/src/huge.dmp", 2<<30, 1<<30)
	report.AddMissing("/src/gone", "source does not exist")

	manifest := &Manifest{
		Version:     ManifestVersion,
		OutputDir:   dir,
		LatestN:     3,
		WERPatterns: []string{"Kernel_193_*"},
		CopyReport:  report,
	}

	require.NoError(t, WriteManifest(dir, manifest))
	assert.Equal(t, filepath.Join(dir, ManifestFile), manifest.ManifestPath)

	loaded := LoadManifest(dir)
	require.NotNil(t, loaded)
	assert.Equal(t, manifest.WERPatterns, loaded.WERPatterns)
	require.Len(t, loaded.CopyReport.Copied, 1)
	assert.Equal(t, "/src/a.dmp", loaded.CopyReport.Copied[0].Src)
	require.Len(t, loaded.CopyReport.SkippedLarge, 1)
	assert.Equal(t, int64(1<<30), loaded.CopyReport.SkippedLarge[0].Limit)
}

func Test_LoadManifestMissing(t *testing.T) {
	assert.Nil(t, LoadManifest(t.TempDir()))
}
