package report

import (
	"math"

	"github.com/npda-audit/platform/pkg/common/models"
)

// Assembler turns a computed scope report into its display form: rows in
// canonical order with a divider at each category boundary, percentages
// rounded down to whole numbers and waffle-chart quintile fills.

const waffleSegments = 5

type Assembler struct {
	byNumber        map[string]RowMetadata
	categoryColours map[string]string
}

func NewAssembler(meta Metadata) *Assembler {
	byNumber := make(map[string]RowMetadata, len(meta.Rows))
	for _, row := range meta.Rows {
		byNumber[row.Number] = row
	}
	return &Assembler{byNumber: byNumber, categoryColours: meta.CategoryColours}
}

func (a *Assembler) Assemble(sr *models.ScopeReport) *models.Report {
	rows := make([]models.ReportRow, 0, len(sr.Results)+8)

	lastCategory := ""
	for _, r := range sr.Results {
		if r.Category != lastCategory {
			rows = append(rows, models.ReportRow{
				Divider:  true,
				Category: r.Category,
				Colour:   a.categoryColours[r.Category],
			})
			lastCategory = r.Category
		}
		rows = append(rows, a.row(r))
	}

	return &models.Report{
		Scope:        sr.Scope,
		AuditYear:    sr.AuditYear,
		PatientCount: sr.PatientCount,
		Rows:         rows,
		CalculatedAt: sr.CalculatedAt,
	}
}

func (a *Assembler) row(r models.KPIResult) models.ReportRow {
	row := models.ReportRow{
		Category:        r.Category,
		Number:          r.Number,
		Label:           r.Label,
		Colour:          a.categoryColours[r.Category],
		TotalEligible:   r.TotalEligible,
		TotalIneligible: r.TotalIneligible,
		TotalPassed:     r.TotalPassed,
		TotalFailed:     r.TotalFailed,
		Statistic:       r.Statistic,
	}

	if meta, ok := a.byNumber[r.Number]; ok {
		if meta.Label != "" {
			row.Label = meta.Label
		}
		row.HelpText = meta.HelpText
		if meta.Colour != "" {
			row.Colour = meta.Colour
		}
	}

	// Display percentages round down so a unit never shows a rate it has
	// not fully reached.
	if r.PassRate != nil {
		pct := math.Floor(*r.PassRate)
		row.PassRate = &pct
		filled := int(pct / (100 / waffleSegments))
		row.FiguresColoured = &filled
	}

	return row
}
