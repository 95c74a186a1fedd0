package doctor

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/crashkit/crashkit/pkg/bundle"
	"github.com/crashkit/crashkit/pkg/logger"
	"github.com/crashkit/crashkit/pkg/util"
	"github.com/pkg/errors"
)

// CommandRunner executes one diagnostic command. The commands are opaque
// collaborators; their output is saved verbatim, never parsed here.
type CommandRunner func(name string, args ...string) (*util.CommandResult, error)

var isWindows = util.IsWindows

type Options struct {
	// OutputDir is an explicit target directory.
	OutputDir string
	// Bundle targets an existing bundle instead: a path, or "latest" to
	// resolve the newest bundle under ArtifactsRoot.
	Bundle        string
	ArtifactsRoot string

	RunSFC      bool
	DISMScan    bool
	DISMRestore bool

	RunCommand CommandRunner
	Now        func() time.Time
}

// CommandRecord describes one executed diagnostic command.
type CommandRecord struct {
	Name       string   `json:"name"`
	Cmd        []string `json:"cmd"`
	ExitCode   int      `json:"exit_code"`
	OutputFile string   `json:"output_file"`
}

type Result struct {
	OutputDir string          `json:"output_dir"`
	Commands  []CommandRecord `json:"commands"`
	Skipped   []string        `json:"skipped"`
}

type commandSpec struct {
	name     string
	cmd      []string
	filename string
}

// Run executes the non-destructive diagnostics and records their output.
// Every command's stdout and stderr land verbatim in a file next to the
// doctor manifest; a failing command is recorded, not fatal.
func Run(opts Options, log *logger.CLILogger) (*Result, error) {
	if opts.RunCommand == nil {
		opts.RunCommand = util.RunCommand
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ArtifactsRoot == "" {
		opts.ArtifactsRoot = "artifacts"
	}

	outputDir, err := resolveOutputDir(&opts)
	if err != nil {
		return nil, err
	}
	if err := util.EnsureDir(outputDir); err != nil {
		return nil, err
	}

	result := &Result{
		OutputDir: outputDir,
		Commands:  []CommandRecord{},
		Skipped:   []string{},
	}

	if !isWindows() {
		result.Skipped = append(result.Skipped, "not running on Windows")
		return result, writeDoctorManifest(outputDir, result)
	}

	specs := []commandSpec{
		{name: "systeminfo", cmd: []string{"systeminfo"}, filename: "sysinfo.txt"},
		{name: "memory", cmd: []string{"wmic", "memorychip", "get", "Capacity,Speed,Manufacturer,PartNumber", "/format:csv"}, filename: "memory.csv"},
	}

	if opts.RunSFC {
		specs = append(specs, commandSpec{name: "sfc", cmd: []string{"sfc", "/scannow"}, filename: "sfc.txt"})
	}
	if opts.DISMScan {
		specs = append(specs, commandSpec{name: "dism_scan", cmd: []string{"DISM", "/Online", "/Cleanup-Image", "/ScanHealth"}, filename: "dism_scan.txt"})
	}
	if opts.DISMRestore {
		specs = append(specs, commandSpec{name: "dism_restore", cmd: []string{"DISM", "/Online", "/Cleanup-Image", "/RestoreHealth"}, filename: "dism_restore.txt"})
	}

	for _, spec := range specs {
		log.ChildActionWithoutSpinner("running %s", spec.name)
		record, err := runAndSave(opts.RunCommand, outputDir, spec)
		if err != nil {
			result.Skipped = append(result.Skipped, spec.name+": "+err.Error())
			continue
		}
		result.Commands = append(result.Commands, *record)
	}

	return result, writeDoctorManifest(outputDir, result)
}

func resolveOutputDir(opts *Options) (string, error) {
	if opts.Bundle == "latest" {
		latest, err := bundle.Latest(opts.ArtifactsRoot)
		if err != nil {
			return "", err
		}
		return latest, nil
	}
	if opts.Bundle != "" {
		return opts.Bundle, nil
	}
	if opts.OutputDir != "" {
		return opts.OutputDir, nil
	}
	return filepath.Join(opts.ArtifactsRoot, "doctor-"+bundle.Timestamp(opts.Now())), nil
}

func runAndSave(run CommandRunner, outputDir string, spec commandSpec) (*CommandRecord, error) {
	result, err := run(spec.cmd[0], spec.cmd[1:]...)
	if err != nil {
		return nil, err
	}

	combined := result.Stdout
	if result.Stderr != "" {
		combined += "\n" + result.Stderr
	}

	outputFile := filepath.Join(outputDir, spec.filename)
	if err := ioutil.WriteFile(outputFile, []byte(combined), 0644); err != nil {
		return nil, err
	}

	return &CommandRecord{
		Name:       spec.name,
		Cmd:        spec.cmd,
		ExitCode:   result.ExitCode,
		OutputFile: outputFile,
	}, nil
}

func writeDoctorManifest(outputDir string, result *Result) error {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal doctor manifest")
	}
	if err := ioutil.WriteFile(filepath.Join(outputDir, "doctor_manifest.json"), b, 0644); err != nil {
		return errors.Wrap(err, "failed to write doctor manifest")
	}
	return nil
}
