package wer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SignatureKey normalizes a report's signature values into a canonical
// grouping key: "Sig0=x Sig1=y ...", indices ascending, only indices present
// in the report. Reports without signature values yield an empty key.
func SignatureKey(report *Report) string {
	indices := sortedIndices(report.SigValues)
	if len(indices) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(indices))
	for _, idx := range indices {
		pairs = append(pairs, fmt.Sprintf("Sig%d=%s", idx, report.SigValues[strconv.Itoa(idx)]))
	}
	return strings.Join(pairs, " ")
}

// SignatureCount is one cluster of reports sharing a signature key.
type SignatureCount struct {
	Signature string `json:"signature"`
	Count     int    `json:"count"`
}

// Cluster groups reports by signature key and ranks the clusters by count
// descending. Ties keep first-occurrence order; reports with no signature
// values are excluded.
func Cluster(reports []*Report) []SignatureCount {
	counts := map[string]int{}
	order := []string{}

	for _, report := range reports {
		key := SignatureKey(report)
		if key == "" {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	clusters := make([]SignatureCount, 0, len(order))
	for _, key := range order {
		clusters = append(clusters, SignatureCount{Signature: key, Count: counts[key]})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Count > clusters[j].Count
	})

	return clusters
}
