package util

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

var windowsEnvVar = regexp.MustCompile(`%([^%]+)%`)

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// EnsureDir creates the directory and any missing parents. Creating an
// already-existing directory is not an error.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, "failed to create dir %s", path)
	}
	return nil
}

// ExpandPath resolves $VAR, ${VAR} and %VAR% placeholders against the current
// environment and expands a leading ~ to the user home directory.
func ExpandPath(path string) string {
	expanded := windowsEnvVar.ReplaceAllStringFunc(path, func(match string) string {
		name := strings.Trim(match, "%")
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
	expanded = os.ExpandEnv(expanded)

	if expanded == "~" || strings.HasPrefix(expanded, "~/") || strings.HasPrefix(expanded, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = filepath.Join(home, expanded[1:])
		}
	}

	return expanded
}

type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// RunCommand executes a command synchronously and captures its output. A
// non-zero exit is reported through ExitCode, not through the returned error;
// the error is reserved for commands that could not be started at all.
func RunCommand(name string, args ...string) (*CommandResult, error) {
	cmd := exec.Command(name, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = -1
		return result, errors.Wrapf(err, "failed to run %s", name)
	}

	return result, nil
}
