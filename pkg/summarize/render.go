package summarize

import (
	"fmt"
	"sort"
	"strings"
)

// sysInfoDisplayKeys are the snapshot fields worth surfacing in the text
// summary.
var sysInfoDisplayKeys = []string{
	"OS Name",
	"System Manufacturer",
	"System Model",
	"System Type",
}

const topSignatureLimit = 10

// RenderText flattens a summary into the plain-text report. It is a pure
// function of the Summary, so the text file can always be regenerated
// byte-for-byte from the JSON file alone.
func RenderText(summary *Summary) string {
	lines := []string{
		"crashkit summary",
		fmt.Sprintf("Bundle: %s", summary.BundleDir),
		fmt.Sprintf("Generated: %s", summary.GeneratedAt),
		fmt.Sprintf("WER reports: %d", summary.ReportCount),
		fmt.Sprintf("LiveKernelReports files: %d", summary.ArtifactStats.LiveKernelFiles),
		fmt.Sprintf("Minidump files: %d", summary.ArtifactStats.MinidumpFiles),
	}

	if largest := summary.ArtifactStats.LargestLiveKernelFile; largest != nil {
		lines = append(lines, fmt.Sprintf("Largest LiveKernel file: %s (%s)", largest.Path, largest.Size))
	}

	if len(summary.SignatureCounts) > 0 {
		lines = append(lines, "", "Top signatures:")
		for i, cluster := range summary.SignatureCounts {
			if i == topSignatureLimit {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s (%d)", cluster.Signature, cluster.Count))
		}
	}

	if len(summary.GPU) > 0 {
		lines = append(lines, "", "GPU:")
		for _, gpu := range summary.GPU {
			lines = append(lines, fmt.Sprintf("- %s DriverVersion=%s DriverDate=%s",
				valueOr(gpu, "Name", "Unknown"),
				valueOr(gpu, "DriverVersion", "Unknown"),
				valueOr(gpu, "DriverDate", "Unknown")))
		}
	}

	if len(summary.OS) > 0 {
		lines = append(lines, "", "OS:")
		keys := make([]string, 0, len(summary.OS))
		for key := range summary.OS {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			lines = append(lines, fmt.Sprintf("- %s: %s", key, summary.OS[key]))
		}
	}

	if summary.SysInfo != nil {
		lines = append(lines, "", "Sysinfo:")
		for _, key := range sysInfoDisplayKeys {
			if value := summary.SysInfo.Field(key); value != "" {
				lines = append(lines, fmt.Sprintf("- %s: %s", key, value))
			}
		}
	}

	if summary.MemoryCSV != nil {
		lines = append(lines, "", fmt.Sprintf("Memory CSV rows: %d", len(summary.MemoryCSV.Rows)))
	}

	return strings.Join(lines, "\n") + "\n"
}

func valueOr(row map[string]string, key string, fallback string) string {
	if value := row[key]; value != "" {
		return value
	}
	return fallback
}
