package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/report"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	ruleHeavy = "═══════════════════════════════════════════════════════════"
	ruleLight = "───────────────────────────────────────────────────────────"
)

// PrintHeader prints a formatted command header
func PrintHeader(w io.Writer, title string, fields [][2]string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, ruleHeavy)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, ruleLight)
	for _, f := range fields {
		fmt.Fprintf(w, "  %-10s: %s\n", f[0], f[1])
	}
	fmt.Fprintln(w, ruleLight)
}

// PrintRunSummary prints counts, lag and the top ranked symbols of a run
func PrintRunSummary(w io.Writer, result *contracts.RunResult, artifacts *report.Artifacts, topN int) {
	m := result.Manifest

	PrintHeader(w, "Watchlist Monitor Run", [][2]string{
		{"Run ID", m.RunID},
		{"As-of", m.AsOfDate + " (" + m.AnchorPolicy + ")"},
		{"Watchlist", fmt.Sprintf("%d symbols, %d excluded, %d missing files", m.Counts.Watchlist, m.Counts.Excluded, m.Counts.MissingFiles)},
		{"Eligible", fmt.Sprintf("%d / %d", m.Counts.Eligible, m.Counts.Universe)},
		{"Lag", lagLine(m.Lag)},
	})

	if len(m.GateFailures) > 0 {
		fmt.Fprintln(w, "  Gate failures:")
		for _, reason := range contracts.GateOrder() {
			if n := m.GateFailures[reason]; n > 0 {
				fmt.Fprintf(w, "    %-22s %d\n", reason, n)
			}
		}
		fmt.Fprintln(w, ruleLight)
	}

	printed := 0
	for i := range result.Scored {
		r := &result.Scored[i]
		if topN > 0 && !r.IsTopRanked(topN) {
			continue
		}
		fmt.Fprintf(w, "  %3d. %-8s %2d  %-5s %s\n", r.Rank, r.Symbol, r.MonitorScore, r.RiskLevel, contracts.JoinFlags(r.RiskFlags))
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(w, "  (no eligible symbols)")
	}

	if artifacts != nil {
		fmt.Fprintln(w, ruleLight)
		fmt.Fprintf(w, "  Artifacts : %s (%s)\n", artifacts.Dir, strings.Join(artifacts.Files, ", "))
	}
	PrintCompletion(w, "Run", totalDuration(result.StageDurations))
}

// PrintCompletion prints a completion line
func PrintCompletion(w io.Writer, what string, d time.Duration) {
	fmt.Fprintln(w, ruleHeavy)
	fmt.Fprintf(w, "✅ %s completed in %.2fs\n", what, d.Seconds())
}

func lagLine(lag contracts.LagSummary) string {
	if !lag.WorstLagDays.Valid {
		return "n/a"
	}
	return fmt.Sprintf("worst %dd (%s), median %.1fd, %d stale (> %dd)",
		lag.WorstLagDays.Int64, lag.WorstSymbol, lag.MedianLagDays.Float64, lag.StaleSymbols, lag.MaxLagAllowed)
}

func totalDuration(stages map[contracts.Stage]time.Duration) time.Duration {
	var total time.Duration
	for _, d := range stages {
		total += d
	}
	return total
}
