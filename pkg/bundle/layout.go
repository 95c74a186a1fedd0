package bundle

// Fixed subdirectory names inside a bundle. This layout is the contract
// between collect and summarize; changing its shape requires a bump of
// ManifestVersion.
const (
	WERDir        = "wer"
	LiveKernelDir = "livekernelreports"
	MinidumpDir   = "minidump"
	EventLogDir   = "eventlogs"
	CustomDir     = "custom"

	ManifestFile    = "manifest.json"
	SummaryJSONFile = "summary.json"
	SummaryTextFile = "summary.txt"

	ManifestVersion = "v1"
)
