package doctor

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crashkit/crashkit/pkg/bundle"
	"github.com/crashkit/crashkit/pkg/logger"
	"github.com/crashkit/crashkit/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logger.CLILogger {
	log := logger.NewCLILogger(os.Stdout)
	log.Silence()
	return log
}

func onWindows(t *testing.T) {
	t.Helper()
	original := isWindows
	isWindows = func() bool { return true }
	t.Cleanup(func() { isWindows = original })
}

func fakeRunner(t *testing.T, calls *[]string) CommandRunner {
	return func(name string, args ...string) (*util.CommandResult, error) {
		*calls = append(*calls, name)
		return &util.CommandResult{ExitCode: 0, Stdout: "output of " + name, Stderr: ""}, nil
	}
}

func Test_RunBaselineCommands(t *testing.T) {
	onWindows(t)

	calls := []string{}
	opts := Options{
		OutputDir:  filepath.Join(t.TempDir(), "doctor"),
		RunCommand: fakeRunner(t, &calls),
	}

	result, err := Run(opts, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"systeminfo", "wmic"}, calls)
	require.Len(t, result.Commands, 2)
	assert.Equal(t, "systeminfo", result.Commands[0].Name)
	assert.Equal(t, filepath.Join(opts.OutputDir, "sysinfo.txt"), result.Commands[0].OutputFile)
	assert.FileExists(t, result.Commands[0].OutputFile)

	content, err := ioutil.ReadFile(result.Commands[0].OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "output of systeminfo", string(content))

	assert.FileExists(t, filepath.Join(opts.OutputDir, "doctor_manifest.json"))
}

func Test_RunOptionalCommands(t *testing.T) {
	onWindows(t)

	calls := []string{}
	opts := Options{
		OutputDir:  filepath.Join(t.TempDir(), "doctor"),
		RunSFC:     true,
		DISMScan:   true,
		RunCommand: fakeRunner(t, &calls),
	}

	result, err := Run(opts, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"systeminfo", "wmic", "sfc", "DISM"}, calls)
	require.Len(t, result.Commands, 4)
	assert.Equal(t, "dism_scan", result.Commands[3].Name)
}

func Test_RunRecordsExitCodes(t *testing.T) {
	onWindows(t)

	opts := Options{
		OutputDir: filepath.Join(t.TempDir(), "doctor"),
		RunCommand: func(name string, args ...string) (*util.CommandResult, error) {
			return &util.CommandResult{ExitCode: 1, Stdout: "", Stderr: "access denied"}, nil
		},
	}

	result, err := Run(opts, discardLogger())
	require.NoError(t, err)

	require.Len(t, result.Commands, 2)
	assert.Equal(t, 1, result.Commands[0].ExitCode)

	content, err := ioutil.ReadFile(result.Commands[0].OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "access denied")
}

func Test_RunOffWindows(t *testing.T) {
	original := isWindows
	isWindows = func() bool { return false }
	t.Cleanup(func() { isWindows = original })

	opts := Options{OutputDir: filepath.Join(t.TempDir(), "doctor")}

	result, err := Run(opts, discardLogger())
	require.NoError(t, err)

	assert.Empty(t, result.Commands)
	assert.Contains(t, result.Skipped, "not running on Windows")

	b, err := ioutil.ReadFile(filepath.Join(opts.OutputDir, "doctor_manifest.json"))
	require.NoError(t, err)
	var loaded Result
	require.NoError(t, json.Unmarshal(b, &loaded))
	assert.Equal(t, result.Skipped, loaded.Skipped)
}

func Test_RunIntoLatestBundle(t *testing.T) {
	onWindows(t)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "20250101-000000"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "20250205-120000"), 0755))

	calls := []string{}
	opts := Options{
		Bundle:        "latest",
		ArtifactsRoot: root,
		RunCommand:    fakeRunner(t, &calls),
	}

	result, err := Run(opts, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "20250205-120000"), result.OutputDir)
}

func Test_RunIntoLatestBundleMissing(t *testing.T) {
	onWindows(t)

	opts := Options{
		Bundle:        "latest",
		ArtifactsRoot: t.TempDir(),
	}

	_, err := Run(opts, discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, bundle.ErrNotFound)
}

func Test_RunDefaultDirName(t *testing.T) {
	onWindows(t)

	root := t.TempDir()
	calls := []string{}
	opts := Options{
		ArtifactsRoot: root,
		RunCommand:    fakeRunner(t, &calls),
		Now:           func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) },
	}

	result, err := Run(opts, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "doctor-20250301-100000"), result.OutputDir)
}
