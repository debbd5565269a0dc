package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/medlens/internal/model"
)

// Renderer writes metrics reports as JSON, Markdown and a stdout summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report (raw per-session data plus aggregate)
// to the given path. This is the file the charting layer consumes.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// RenderMarkdown writes a human-readable summary of the report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	b.WriteString("# Medlens Metrics Report\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Corpus: %s\n", report.Corpus)
	if report.Seed != nil {
		fmt.Fprintf(&b, "- Seed: %d\n", *report.Seed)
	} else {
		b.WriteString("- Seed: none\n")
	}
	fmt.Fprintf(&b, "- Sessions: %d\n\n", report.Aggregate.TotalSessions)

	b.WriteString("## Compliance Metrics\n\n")
	b.WriteString("| Metric | Value | Target | Status |\n")
	b.WriteString("|--------|-------|--------|--------|\n")
	for _, m := range report.Aggregate.Metrics() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			m.Label, formatMetric(m), formatTarget(m), statusOf(m))
	}

	agg := report.Aggregate
	b.WriteString("\n## Counts\n\n")
	fmt.Fprintf(&b, "- Claims: %d total, %d verified, %d cited\n",
		agg.TotalClaims, agg.VerifiedClaims, agg.CitedClaims)
	fmt.Fprintf(&b, "- Gaps: %d total, %d flagged demographic/geographic\n",
		agg.TotalGaps, agg.FlaggedGaps)
	fmt.Fprintf(&b, "- Orphaned citations: %d\n", agg.OrphanCitations)
	if report.Liveness != nil {
		fmt.Fprintf(&b, "- Citation liveness: %d probed, %d dead\n",
			report.Liveness.Probed, report.Liveness.Dead)
	}

	if r.includeFooter {
		b.WriteString("\n---\n")
		b.WriteString("Generated by [medlens](https://github.com/ppiankov/medlens). ")
		b.WriteString("Verification means well-formed citation presence, not truth.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}

// RenderSummary prints a short table to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Printf("\nSessions: %d   Claims: %d   Gaps: %d\n\n",
		report.Aggregate.TotalSessions,
		report.Aggregate.TotalClaims,
		report.Aggregate.TotalGaps)

	for _, m := range report.Aggregate.Metrics() {
		fmt.Printf("  %-32s %10s  (target %s)  %s\n",
			m.Label, formatMetric(m), formatTarget(m), statusOf(m))
	}

	if report.Aggregate.AllTargetsMet {
		fmt.Printf("\nAll targets met.\n")
	} else {
		fmt.Printf("\nSome targets not met.\n")
	}
}

func formatMetric(m model.Metric) string {
	if m.Samples == 0 {
		return "n/a"
	}
	if m.Unit == "%" {
		return fmt.Sprintf("%.1f%%", m.Value*100)
	}
	return fmt.Sprintf("%.1f%s", m.Value, m.Unit)
}

func formatTarget(m model.Metric) string {
	if m.Unit == "%" {
		return fmt.Sprintf("%.0f%%", m.Target*100)
	}
	return fmt.Sprintf("%.0f%s", m.Target, m.Unit)
}

func statusOf(m model.Metric) string {
	if m.Samples == 0 {
		return "no data"
	}
	if m.Met {
		return "met"
	}
	return "not met"
}
