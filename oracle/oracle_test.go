package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVerdictSat(t *testing.T) {
	require.Equal(t, Sat, parseVerdict([]byte("c comment\nSAT\nv 1 -2 0\n")))
}

func TestParseVerdictUnsat(t *testing.T) {
	require.Equal(t, Unsat, parseVerdict([]byte("UNSAT\n")))
}

func TestParseVerdictUnknownOnGarbage(t *testing.T) {
	require.Equal(t, VerdictUnknown, parseVerdict([]byte("timeout\n")))
}

func TestAgreementUnknownNeverDisagrees(t *testing.T) {
	require.Equal(t, "UNKNOWN", Agreement("UNKNOWN", Sat))
	require.Equal(t, "UNKNOWN", Agreement("SAT", VerdictUnknown))
}

func TestAgreementDetectsMismatch(t *testing.T) {
	require.Equal(t, "DISAGREE", Agreement("SAT", Unsat))
	require.Equal(t, "AGREE", Agreement("UNSAT", Unsat))
}
