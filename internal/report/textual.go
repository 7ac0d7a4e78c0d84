package report

import (
	"fmt"
	"strings"
)

// severityIcon mirrors the severity-icon convention this codebase's
// markdown report generator already uses for AI-scan vulnerabilities,
// carried over unchanged for reentrancy pattern severities.
func severityIcon(severity string) string {
	switch severity {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "medium":
		return "🟡"
	case "low":
		return "🟢"
	default:
		return "⚪"
	}
}

// RenderText builds the human-readable report: a header with totals and the
// severity distribution, then patterns grouped by classification, then a
// cross-contract call listing.
func RenderText(r Result) string {
	var b strings.Builder

	b.WriteString("# Reentrancy Analysis Report\n\n")
	b.WriteString(fmt.Sprintf("**Contracts**: %d\n", r.Summary.TotalContracts))
	b.WriteString(fmt.Sprintf("**Functions**: %d\n", r.Summary.TotalFunctions))
	b.WriteString(fmt.Sprintf("**Patterns Found**: %d\n\n", r.Summary.TotalPatterns))

	if len(r.Summary.SeverityCounts) > 0 {
		b.WriteString("## Severity Distribution\n\n")
		for _, sev := range []string{"critical", "high", "medium", "low"} {
			if count, ok := r.Summary.SeverityCounts[sev]; ok && count > 0 {
				b.WriteString(fmt.Sprintf("- %s **%s**: %d\n", severityIcon(sev), sev, count))
			}
		}
		b.WriteString("\n")
	}

	renderGroup(&b, r, "confirmed_reentrancy", "Confirmed Reentrancy")
	renderGroup(&b, r, "potential_reentrancy", "Potential Reentrancy")
	renderGroup(&b, r, "safe_external_call", "Safe External Calls")

	b.WriteString("## Cross-Contract Calls\n\n")
	crossContractCount := 0
	for _, e := range r.CallGraph.Edges {
		if e.Type != "cross_contract" {
			continue
		}
		crossContractCount++
		line := fmt.Sprintf("- %s -> %s", e.Source, e.Target)
		if e.ViaInterface != "" {
			line += fmt.Sprintf(" (via %s)", e.ViaInterface)
		}
		b.WriteString(line + "\n")
	}
	if crossContractCount == 0 {
		b.WriteString("None found.\n")
	}

	return b.String()
}

func renderGroup(b *strings.Builder, r Result, classification, title string) {
	var matches []PatternView
	for _, p := range r.Patterns {
		if p.Classification == classification {
			matches = append(matches, p)
		}
	}

	b.WriteString(fmt.Sprintf("## %s (%d)\n\n", title, len(matches)))
	if len(matches) == 0 {
		b.WriteString("None found.\n\n")
		return
	}

	for i, p := range matches {
		icon := severityIcon(p.Severity)
		b.WriteString(fmt.Sprintf("%d. %s **[%s]** `%s`\n", i+1, icon, strings.ToUpper(p.Severity), p.Function))
		target := p.ExternalCallTarget
		if target == "" {
			target = "unknown target"
		}
		b.WriteString(fmt.Sprintf("   Call: `%s` -> %s\n", p.ExternalCallNode, target))
		b.WriteString(fmt.Sprintf("   %s\n\n", p.Details))
	}
}
