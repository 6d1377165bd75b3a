package reporting

import (
	"fmt"
	"strings"
)

// RenderCapacityCSV renders capacity decisions as CSV string.
func RenderCapacityCSV(rows []CapacityRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("build_id,asset_id,technology_id,build_year,kind,capacity_mw\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%s,%.6f\n",
			r.BuildID,
			r.AssetID,
			r.TechnologyID,
			r.BuildYear,
			r.Kind,
			r.CapacityMW,
		))
	}

	return sb.String()
}

// RenderMarginalsCSV renders per-timepoint marginal costs as CSV string.
func RenderMarginalsCSV(rows []MarginalRow) string {
	var sb strings.Builder

	sb.WriteString("timepoint_id,marginal_cost_per_mwh\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f\n", r.TimepointID, r.CostPerMWh))
	}

	return sb.String()
}
