package wer

import (
	"fmt"
	"io/ioutil"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/crashkit/crashkit/pkg/util"
	"github.com/pkg/errors"
)

// Report is the parsed form of one Report.wer file. Signature and namespace
// parameters are keyed by their decimal index as it appeared in the file;
// rendering always happens in ascending numeric index order, so gaps and
// out-of-order lines in the file do not matter.
type Report struct {
	Path              string            `json:"path"`
	EventType         string            `json:"event_type"`
	FriendlyEventName string            `json:"friendly_event_name"`
	SigValues         map[string]string `json:"sig_values"`
	SigNames          map[string]string `json:"sig_names"`
	NsValues          map[string]string `json:"ns_values"`
	StopCode          string            `json:"stop_code,omitempty"`
	DumpFile          string            `json:"dump_file,omitempty"`
	ReportID          string            `json:"report_id,omitempty"`
	ProblemSignature  string            `json:"problem_signature,omitempty"`
}

var (
	sigValueKey = regexp.MustCompile(`^Sig\[(\d+)\]\.Value$`)
	sigNameKey  = regexp.MustCompile(`^Sig\[(\d+)\]\.Name$`)
	nsValueKey  = regexp.MustCompile(`^(?:Ns|DynamicSig)\[(\d+)\]\.Value$`)
)

// friendlyEventNames maps known WER event type identifiers to display names.
// Unknown identifiers pass through unchanged.
var friendlyEventNames = map[string]string{
	"LiveKernelEvent":   "Live Kernel Event",
	"BlueScreen":        "Blue screen (bugcheck)",
	"AppCrash":          "Application crash",
	"AppHangB1":         "Application hang",
	"CLR20r3":           "Managed application crash",
	"BEX":               "Buffer overflow exception",
	"BEX64":             "Buffer overflow exception (64-bit)",
	"RADAR_PRE_LEAK_64": "Memory leak detected",
}

var explicitStopCodeKeys = []string{"StopCode", "Stopcode", "Code", "BugcheckCode", "Bugcheck"}

var stopCodeSigNames = map[string]bool{
	"stopcode":     true,
	"code":         true,
	"bugcheck":     true,
	"bugcheckcode": true,
}

// ParseReportFile converts one Report.wer-style text file into a Report. A
// file that cannot be read, is empty, or carries no event type yields an
// error; callers drop the record but keep counting the file.
func ParseReportFile(path string) (*Report, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read report %s", path)
	}

	report, err := parseReport(util.DecodeText(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse report %s", path)
	}

	report.Path = path
	return report, nil
}

func parseReport(text string) (*Report, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("report is empty")
	}

	data := map[string]string{}
	sigValues := map[string]string{}
	sigNames := map[string]string{}
	nsValues := map[string]string{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "=") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		data[key] = value

		// First matching index pattern wins.
		if m := sigValueKey.FindStringSubmatch(key); m != nil {
			sigValues[m[1]] = value
			continue
		}
		if m := sigNameKey.FindStringSubmatch(key); m != nil {
			sigNames[m[1]] = value
			continue
		}
		if m := nsValueKey.FindStringSubmatch(key); m != nil {
			nsValues[m[1]] = value
		}
	}

	eventType := data["EventType"]
	if eventType == "" {
		return nil, errors.New("report has no event type")
	}

	report := &Report{
		EventType:         eventType,
		FriendlyEventName: friendlyEventName(data, eventType),
		SigValues:         sigValues,
		SigNames:          sigNames,
		NsValues:          nsValues,
		StopCode:          deriveStopCode(data, sigNames, sigValues, eventType),
		DumpFile:          firstPresent(data, "DumpFile", "DumpPath"),
		ReportID:          data["ReportIdentifier"],
		ProblemSignature:  deriveProblemSignature(data, sigValues),
	}

	return report, nil
}

func friendlyEventName(data map[string]string, eventType string) string {
	if name := data["FriendlyEventName"]; name != "" {
		return name
	}
	if name, ok := friendlyEventNames[eventType]; ok {
		return name
	}
	return eventType
}

// isKernelEvent reports whether the event type is a kernel/bluescreen-class
// event, for which Sig[0] conventionally carries the stop code.
func isKernelEvent(eventType string) bool {
	return eventType == "LiveKernelEvent" ||
		eventType == "BlueScreen" ||
		strings.HasPrefix(eventType, "Kernel")
}

func deriveStopCode(data map[string]string, sigNames map[string]string, sigValues map[string]string, eventType string) string {
	for _, key := range explicitStopCodeKeys {
		if code := data[key]; code != "" {
			return code
		}
	}

	for _, idx := range sortedIndices(sigNames) {
		key := strconv.Itoa(idx)
		if stopCodeSigNames[strings.ToLower(sigNames[key])] {
			return sigValues[key]
		}
	}

	if isKernelEvent(eventType) {
		return sigValues["0"]
	}

	return ""
}

func deriveProblemSignature(data map[string]string, sigValues map[string]string) string {
	if sig := firstPresent(data, "ProblemSignature", "ProblemSignatures"); sig != "" {
		return sig
	}

	for _, idx := range sortedIndices(sigValues) {
		value := sigValues[strconv.Itoa(idx)]
		if value == "" {
			continue
		}
		return fmt.Sprintf("P%d: %s", idx+1, value)
	}

	return ""
}

func firstPresent(data map[string]string, keys ...string) string {
	for _, key := range keys {
		if value := data[key]; value != "" {
			return value
		}
	}
	return ""
}

// sortedIndices returns the numeric keys of an index-keyed map in ascending
// order. Non-numeric keys cannot occur through the parser and are dropped.
func sortedIndices(m map[string]string) []int {
	indices := make([]int, 0, len(m))
	for key := range m {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

