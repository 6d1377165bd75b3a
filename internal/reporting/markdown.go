package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Planning Run Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Scenario: %s\n\n", r.RunID, r.Scenario))

	// Solve Outcome
	sb.WriteString("## Solve Outcome\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	status := "ITERATION LIMIT REACHED"
	if r.Converged {
		status = "CONVERGED"
	}
	sb.WriteString(fmt.Sprintf("| Status | %s |\n", status))
	sb.WriteString(fmt.Sprintf("| Iterations | %d |\n", r.Iterations))
	sb.WriteString(fmt.Sprintf("| Total NPV Cost | %.2f |\n", r.ObjectiveNPV))
	sb.WriteString("\n")

	// Cost Breakdown
	sb.WriteString("## Cost Breakdown\n\n")
	if len(r.CostBreakdown) > 0 {
		sb.WriteString("| Term | NPV | Share |\n")
		sb.WriteString("|------|-----|-------|\n")
		for _, c := range r.CostBreakdown {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.1f%% |\n", c.Term, c.NPV, c.SharePct))
		}
	} else {
		sb.WriteString("No cost terms evaluated.\n")
	}
	sb.WriteString("\n")

	// Capacity Decisions
	sb.WriteString("## Capacity Decisions\n\n")
	if len(r.CapacityDecisions) > 0 {
		sb.WriteString("| Asset | Technology | Build Year | Kind | MW |\n")
		sb.WriteString("|-------|------------|------------|------|----|\n")
		for _, c := range r.CapacityDecisions {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %.1f |\n",
				c.AssetID, c.TechnologyID, c.BuildYear, c.Kind, c.CapacityMW))
		}
	} else {
		sb.WriteString("No builds on the books.\n")
	}
	sb.WriteString("\n")

	// Period Summaries
	sb.WriteString("## Periods\n\n")
	if len(r.PeriodSummaries) > 0 {
		sb.WriteString("| Period | Years | Peak Demand MW | Installed MW |\n")
		sb.WriteString("|--------|-------|----------------|--------------|\n")
		for _, p := range r.PeriodSummaries {
			sb.WriteString(fmt.Sprintf("| %s | %d-%d | %.1f | %.1f |\n",
				p.PeriodID, p.StartYear, p.EndYear, p.PeakDemandMW, p.InstalledMW))
		}
	} else {
		sb.WriteString("No periods.\n")
	}
	sb.WriteString("\n")

	// Marginal Costs
	sb.WriteString("## Marginal Costs\n\n")
	if len(r.Marginals) > 0 {
		sb.WriteString("| Timepoint | $/MWh |\n")
		sb.WriteString("|-----------|-------|\n")
		for _, m := range r.Marginals {
			sb.WriteString(fmt.Sprintf("| %s | %.2f |\n", m.TimepointID, m.CostPerMWh))
		}
	} else {
		sb.WriteString("No marginal costs available.\n")
	}
	sb.WriteString("\n")

	// Unserved Demand
	sb.WriteString("## Unserved Demand\n\n")
	if len(r.Unserved) > 0 {
		sb.WriteString("| Timepoint | MW |\n")
		sb.WriteString("|-----------|----|\n")
		for _, u := range r.Unserved {
			sb.WriteString(fmt.Sprintf("| %s | %.2f |\n", u.TimepointID, u.UnservedMW))
		}
		sb.WriteString("\n**Warning:** the system cannot serve all demand with the decided capacity.\n")
	} else {
		sb.WriteString("All demand served.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
