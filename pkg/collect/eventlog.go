package collect

import (
	"fmt"
	"path/filepath"

	"github.com/crashkit/crashkit/pkg/logger"
	"github.com/crashkit/crashkit/pkg/util"
	"github.com/pkg/errors"
)

// EventLogExporter exports one event log covering the last `hours` hours
// into destPath. The default implementation shells out to the platform
// exporter; the command is an opaque producer whose output is saved verbatim.
type EventLogExporter func(logName string, destPath string, hours int) error

func exportEventLog(logName string, destPath string, hours int) error {
	if !util.IsWindows() {
		return errors.New("event log export requires windows")
	}

	query := fmt.Sprintf("*[System[TimeCreated[timediff(@SystemTime) <= %d]]]", int64(hours)*3600*1000)
	result, err := util.RunCommand("wevtutil", "epl", logName, destPath, "/q:"+query, "/ow:true")
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return errors.Errorf("wevtutil exited %d: %s", result.ExitCode, result.Stderr)
	}

	return nil
}

// exportEventLogs writes one export file per configured log name. A failure
// for one log never blocks the others; the returned list holds only the
// exports that succeeded.
func exportEventLogs(opts *Options, destDir string, log *logger.CLILogger) []string {
	if err := util.EnsureDir(destDir); err != nil {
		log.Warning("unable to create event log dir: %v", err)
		return []string{}
	}

	outputs := []string{}
	for _, logName := range opts.EventLogNames {
		destPath := filepath.Join(destDir, logName+".evtx")
		if err := opts.ExportEventLog(logName, destPath, opts.EventLogHours); err != nil {
			log.Warning("failed to export %s event log: %v", logName, err)
			continue
		}
		outputs = append(outputs, destPath)
	}

	return outputs
}
