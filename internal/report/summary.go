package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s4_scoring"
)

// summaryMarkdown renders the human-readable run summary
func (f formatter) summaryMarkdown(w io.Writer, result *contracts.RunResult, topN int) error {
	m := result.Manifest
	var b strings.Builder

	fmt.Fprintf(&b, "# Watchlist Monitor: %s\n\n", m.AsOfDate)
	fmt.Fprintf(&b, "- Run: `%s` (%s)\n", m.RunID, m.RunTimestamp.UTC().Format("2006-01-02 15:04:05Z"))
	fmt.Fprintf(&b, "- Anchor policy: %s\n", m.AnchorPolicy)
	fmt.Fprintf(&b, "- Config hash: `%s`\n", shortHash(m.ConfigHash))
	fmt.Fprintf(&b, "- Tool version: %s\n\n", m.ToolVersion)

	b.WriteString("## Counts\n\n")
	b.WriteString("| watchlist | universe | excluded | missing files | loaded | eligible | scored |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|---:|\n")
	c := m.Counts
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %d | %d |\n\n",
		c.Watchlist, c.Universe, c.Excluded, c.MissingFiles, c.Loaded, c.Eligible, c.Scored)

	b.WriteString("## Data freshness\n\n")
	fmt.Fprintf(&b, "- Data frontier: %s\n", orDash(f.date(m.Lag.DataFrontier)))
	worst := orDash(f.integer(m.Lag.WorstLagDays))
	if m.Lag.WorstSymbol != "" {
		worst += " (" + m.Lag.WorstSymbol + ")"
	}
	fmt.Fprintf(&b, "- Worst lag_days: %s\n", worst)
	median := "-"
	if m.Lag.MedianLagDays.Valid {
		median = f.fixed(m.Lag.MedianLagDays.Float64, 1)
	}
	fmt.Fprintf(&b, "- Median lag_days: %s\n", median)
	fmt.Fprintf(&b, "- Stale symbols (lag > %d): %d\n", m.Lag.MaxLagAllowed, m.Lag.StaleSymbols)
	if m.Quality != nil {
		fmt.Fprintf(&b, "- Data quality score: %s (passed: %s)\n", f.fixed(m.Quality.QualityScore, 2), f.boolean(m.Quality.Passed))
	}
	b.WriteString("\n")

	b.WriteString("## Gate failures\n\n| reason | symbols |\n|---|---:|\n")
	for _, reason := range contracts.GateOrder() {
		fmt.Fprintf(&b, "| %s | %d |\n", reason, m.GateFailures[reason])
	}
	b.WriteString("\n")

	top := s4_scoring.TopN(result.Scored, topN)
	fmt.Fprintf(&b, "## Top %d\n\n", len(top))
	if len(top) == 0 {
		b.WriteString("No eligible symbols.\n\n")
	} else {
		b.WriteString("| rank | symbol | score | risk | flags | theme | lag_days |\n")
		b.WriteString("|---:|---|---:|---|---|---|---:|\n")
		for _, r := range top {
			fmt.Fprintf(&b, "| %d | %s | %d | %s | %s | %s | %s |\n",
				r.Rank, r.Symbol, r.MonitorScore, r.RiskLevel,
				orDash(strings.Join(flagStrings(r.RiskFlags), ", ")),
				orDash(r.ThemeBucket), orDash(f.integer(r.LagDays)))
		}
		b.WriteString("\n")

		b.WriteString("### Explanations\n\n")
		for _, r := range top {
			fmt.Fprintf(&b, "- **%s**: `%s`\n", r.Symbol, r.Explanation)
		}
		b.WriteString("\n_`*` marks a component scored neutral (0.5) because its inputs were missing._\n\n")
	}

	failed := make([]contracts.SymbolResult, 0)
	for _, s := range result.Symbols {
		if !s.Gate.Eligible {
			failed = append(failed, s)
		}
	}
	if len(failed) > 0 {
		b.WriteString("## Ineligible\n\n| symbol | reasons | detail |\n|---|---|---|\n")
		for _, s := range failed {
			detail := s.Features.LoadError
			if detail == "" {
				detail = s.Member.InvalidReason
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Member.Symbol, escapeCell(s.Gate.ReasonString()), orDash(escapeCell(detail)))
		}
		b.WriteString("\n")
	}

	if result.Universe != nil && len(result.Universe.Excluded) > 0 {
		b.WriteString("## Excluded by filter\n\n")
		keys := make([]string, 0, len(result.Universe.Excluded))
		for k := range result.Universe.Excluded {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, result.Universe.Excluded[k])
		}
		b.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", escapeCell(w))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// renderHTML converts the markdown summary into a standalone page
func renderHTML(w io.Writer, title string, markdown []byte) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert(markdown, &body); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.6em; }
code { font-size: 0.9em; }
</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), body.String())
	return err
}

func flagStrings(flags []contracts.RiskFlag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = string(f)
	}
	return out
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// escapeCell keeps pipes from breaking markdown tables
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
