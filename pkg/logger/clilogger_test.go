package logger

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_SpinnerLifecycle(t *testing.T) {
	var buf bytes.Buffer
	log := NewCLILogger(&buf)

	log.ActionWithSpinner("Archiving %s", "bundle")
	log.FinishSpinner()

	out := buf.String()
	assert.Contains(t, out, "Archiving bundle")
	assert.Contains(t, out, "✓")
}

func Test_SpinnerError(t *testing.T) {
	var buf bytes.Buffer
	log := NewCLILogger(&buf)

	log.ActionWithSpinner("Archiving bundle")
	log.FinishSpinnerWithError()

	assert.Contains(t, buf.String(), "✗")
}

func Test_SilenceSuppressesOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewCLILogger(&buf)
	log.Silence()

	log.ActionWithoutSpinner("action")
	log.ChildActionWithoutSpinner("child")
	log.Info("info")
	log.Warning("warning")
	log.ActionWithSpinner("spinner")
	log.FinishSpinner()

	assert.Empty(t, buf.String())
}

func Test_Warning(t *testing.T) {
	var buf bytes.Buffer
	log := NewCLILogger(&buf)

	log.Warning("failed to export %s", "System")

	assert.Contains(t, buf.String(), "failed to export System")
}

func Test_Error(t *testing.T) {
	var buf bytes.Buffer
	log := NewCLILogger(&buf)

	log.Error(errors.New("unable to create custom group dir"))

	assert.Contains(t, buf.String(), "unable to create custom group dir")
}

func Test_NilLoggerIsSafe(t *testing.T) {
	var log *CLILogger

	log.Silence()
	log.Info("info")
	log.ActionWithoutSpinner("action")
	log.Warning("warning")
}
