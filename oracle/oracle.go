// Package oracle invokes an external reference SAT solver as a subprocess
// and parses its verdict, per spec.md §4.F / §6 "Oracle".
package oracle

import (
	"bufio"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Verdict is the oracle's answer, including the "unavailable" case which
// spec.md §7 requires the driver to treat as UNKNOWN agreement rather than
// a fatal error.
type Verdict int

const (
	Sat Verdict = iota
	Unsat
	VerdictUnknown
)

func (v Verdict) String() string {
	switch v {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// Oracle runs an external reference solver binary on a DIMACS file.
type Oracle struct {
	binary string
	args   []string
	log    zerolog.Logger
}

// New builds an Oracle invoking binary with args, followed by the CNF path
// appended as the final argument at Run time.
func New(binary string, args []string, log zerolog.Logger) *Oracle {
	return &Oracle{binary: binary, args: args, log: log}
}

// Run invokes the oracle on path and parses its stdout for SAT/UNSAT.
// Any failure to launch or a nonzero exit is logged and reported as
// VerdictUnknown rather than propagated as an error (spec.md §7 "Oracle
// unavailable / nonzero exit: log, mark agreement UNKNOWN, continue").
func (o *Oracle) Run(ctx context.Context, path string) Verdict {
	args := append(append([]string{}, o.args...), path)
	cmd := exec.CommandContext(ctx, o.binary, args...)
	out, err := cmd.Output()
	if err != nil {
		o.log.Warn().Err(errors.Wrap(err, "oracle: subprocess failed")).Str("path", path).Msg("oracle unavailable")
		return VerdictUnknown
	}
	return parseVerdict(out)
}

func parseVerdict(out []byte) Verdict {
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "UNSAT"):
			return Unsat
		case strings.HasPrefix(line, "SAT"):
			return Sat
		}
	}
	return VerdictUnknown
}

// Agreement compares a simulator outcome string ("SAT"/"UNSAT"/"UNKNOWN")
// against the oracle verdict. UNKNOWN on either side yields UNKNOWN
// agreement, never a mismatch (spec.md §8: UNKNOWN never counts as a
// disagreement, only an outright SAT/UNSAT swap does).
func Agreement(simOutcome string, oracleVerdict Verdict) string {
	if simOutcome == "UNKNOWN" || oracleVerdict == VerdictUnknown {
		return "UNKNOWN"
	}
	if simOutcome == oracleVerdict.String() {
		return "AGREE"
	}
	return "DISAGREE"
}
