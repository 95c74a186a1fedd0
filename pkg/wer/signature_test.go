package wer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func reportWithSigs(sigs map[string]string) *Report {
	return &Report{EventType: "BlueScreen", SigValues: sigs}
}

func Test_SignatureKey(t *testing.T) {
	tests := []struct {
		name     string
		sigs     map[string]string
		expected string
	}{
		{
			name:     "empty",
			sigs:     map[string]string{},
			expected: "",
		},
		{
			name:     "single value",
			sigs:     map[string]string{"0": "193"},
			expected: "Sig0=193",
		},
		{
			name:     "gaps and numeric ordering",
			sigs:     map[string]string{"10": "j", "2": "b", "0": "a"},
			expected: "Sig0=a Sig2=b Sig10=j",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, SignatureKey(reportWithSigs(test.sigs)))
		})
	}
}

func Test_ClusterOrdering(t *testing.T) {
	a := map[string]string{"0": "A"}
	b := map[string]string{"0": "B"}
	c := map[string]string{"0": "C"}

	reports := []*Report{
		reportWithSigs(a),
		reportWithSigs(a),
		reportWithSigs(b),
		reportWithSigs(a),
		reportWithSigs(c),
		reportWithSigs(b),
	}

	clusters := Cluster(reports)

	assert.Equal(t, []SignatureCount{
		{Signature: "Sig0=A", Count: 3},
		{Signature: "Sig0=B", Count: 2},
		{Signature: "Sig0=C", Count: 1},
	}, clusters)
}

func Test_ClusterTiesKeepFirstOccurrence(t *testing.T) {
	// Z appears before A; equal counts must not be reordered alphabetically.
	reports := []*Report{
		reportWithSigs(map[string]string{"0": "Z"}),
		reportWithSigs(map[string]string{"0": "A"}),
		reportWithSigs(map[string]string{"0": "Z"}),
		reportWithSigs(map[string]string{"0": "A"}),
	}

	clusters := Cluster(reports)

	assert.Equal(t, "Sig0=Z", clusters[0].Signature)
	assert.Equal(t, "Sig0=A", clusters[1].Signature)
}

func Test_ClusterExcludesEmptySignatures(t *testing.T) {
	reports := []*Report{
		reportWithSigs(map[string]string{}),
		reportWithSigs(map[string]string{"0": "A"}),
	}

	clusters := Cluster(reports)

	assert.Len(t, clusters, 1)
	assert.Equal(t, "Sig0=A", clusters[0].Signature)
}
