package collect

import (
	"time"

	"github.com/crashkit/crashkit/pkg/bundle"
)

const (
	DefaultLatestN       = 3
	DefaultMaxDumpGB     = 1
	DefaultEventLogHours = 24
	DefaultArtifactsRoot = "artifacts"
)

var (
	DefaultWERQueue          = `C:\ProgramData\Microsoft\Windows\WER\ReportQueue`
	DefaultLiveKernelReports = `C:\Windows\LiveKernelReports`
	DefaultMinidump          = `C:\Windows\Minidump`

	DefaultWERPatterns = []string{
		"Kernel_193_*",
		"Kernel_15e_*",
		"Kernel_1a8_*",
	}

	DefaultLiveKernelFolders = []string{
		"WATCHDOG",
		"NDIS",
		"USBXHCI",
		"USBHUB3",
		"PoW32kWatchdog",
	}

	DefaultEventLogNames = []string{"System", "Application"}
)

// CustomGroup declares one user-defined source group: explicit files,
// recursively copied directories, and recursive glob patterns.
type CustomGroup struct {
	Files []string `json:"files" mapstructure:"files"`
	Dirs  []string `json:"dirs" mapstructure:"dirs"`
	Globs []string `json:"globs" mapstructure:"globs"`
}

// Options is the resolved selection policy for one collection run. Root
// paths may contain environment-variable placeholders.
type Options struct {
	OutputDir         string
	ArtifactsRoot     string
	LatestN           int
	LatestLiveKernel  int // 0 inherits LatestN
	LatestMinidump    int // 0 inherits LatestN
	EventLogHours     int
	IncludeLargeDumps bool
	MaxDumpGB         int
	WERPatterns       []string
	LiveKernelFolders []string
	EventLogNames     []string
	CustomGroups      map[string]CustomGroup
	Paths             bundle.SourcePaths
	ConfigPath        string

	// ExportEventLog overrides the platform event-log exporter; tests use it.
	ExportEventLog EventLogExporter

	// Now overrides the clock used for the bundle directory name.
	Now func() time.Time
}

func (o *Options) complete() {
	if o.LatestN == 0 {
		o.LatestN = DefaultLatestN
	}
	if o.LatestLiveKernel == 0 {
		o.LatestLiveKernel = o.LatestN
	}
	if o.LatestMinidump == 0 {
		o.LatestMinidump = o.LatestN
	}
	if o.EventLogHours == 0 {
		o.EventLogHours = DefaultEventLogHours
	}
	if o.MaxDumpGB == 0 {
		o.MaxDumpGB = DefaultMaxDumpGB
	}
	if o.ArtifactsRoot == "" {
		o.ArtifactsRoot = DefaultArtifactsRoot
	}
	if len(o.WERPatterns) == 0 {
		o.WERPatterns = DefaultWERPatterns
	}
	if len(o.LiveKernelFolders) == 0 {
		o.LiveKernelFolders = DefaultLiveKernelFolders
	}
	if len(o.EventLogNames) == 0 {
		o.EventLogNames = DefaultEventLogNames
	}
	if o.Paths.WERQueue == "" {
		o.Paths.WERQueue = DefaultWERQueue
	}
	if o.Paths.LiveKernelReports == "" {
		o.Paths.LiveKernelReports = DefaultLiveKernelReports
	}
	if o.Paths.Minidump == "" {
		o.Paths.Minidump = DefaultMinidump
	}
	if o.ExportEventLog == nil {
		o.ExportEventLog = exportEventLog
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

func (o *Options) maxBytes() int64 {
	return int64(o.MaxDumpGB) * 1024 * 1024 * 1024
}
