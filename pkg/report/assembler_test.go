package report

import (
	"testing"
	"time"

	"github.com/npda-audit/platform/pkg/common/models"
	"github.com/npda-audit/platform/pkg/kpi"
)

func pInt(v int) *int           { return &v }
func pFloat(v float64) *float64 { return &v }

func sampleScopeReport() *models.ScopeReport {
	passed, failed := 2, 1
	rate := 66.666666
	return &models.ScopeReport{
		Scope:        models.Scope{Level: models.ScopePDU, Code: "PZ001"},
		AuditYear:    2025,
		PatientCount: 4,
		CalculatedAt: time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC),
		Results: []models.KPIResult{
			{
				Number: "1", Key: "kpi_1_total_eligible",
				Label: "Total number of eligible patients", Category: kpi.CategoryCohort,
				Kind: string(kpi.KindCount), TotalEligible: 3, TotalIneligible: 1,
			},
			{
				Number: "13", Key: "kpi_13_one_to_three_injections_per_day",
				Label: "Number of patients on one to three injections per day", Category: kpi.CategoryTreatment,
				Kind: string(kpi.KindBinary), TotalEligible: 3, TotalIneligible: 1,
				TotalPassed: pInt(passed), TotalFailed: pInt(failed), PassRate: pFloat(rate),
			},
		},
	}
}

func TestAssembleInsertsCategoryDividers(t *testing.T) {
	a := NewAssembler(DefaultMetadata())
	rep := a.Assemble(sampleScopeReport())

	if len(rep.Rows) != 4 {
		t.Fatalf("expected 2 dividers + 2 rows, got %d", len(rep.Rows))
	}
	if !rep.Rows[0].Divider || rep.Rows[0].Category != kpi.CategoryCohort {
		t.Fatalf("expected a cohort divider first, got %+v", rep.Rows[0])
	}
	if rep.Rows[1].Divider || rep.Rows[1].Number != "1" {
		t.Fatalf("expected kpi 1 after the divider, got %+v", rep.Rows[1])
	}
	if !rep.Rows[2].Divider || rep.Rows[2].Category != kpi.CategoryTreatment {
		t.Fatalf("expected a treatment divider, got %+v", rep.Rows[2])
	}
}

func TestAssembleRoundsRatesDown(t *testing.T) {
	a := NewAssembler(DefaultMetadata())
	rep := a.Assemble(sampleScopeReport())

	row := rep.Rows[3]
	if row.PassRate == nil || *row.PassRate != 66 {
		t.Fatalf("expected 66.67%% to display as 66, got %v", row.PassRate)
	}
	if row.FiguresColoured == nil || *row.FiguresColoured != 3 {
		t.Fatalf("expected 3 of 5 waffle segments at 66%%, got %v", row.FiguresColoured)
	}
}

func TestAssembleNotApplicableRate(t *testing.T) {
	sr := sampleScopeReport()
	sr.Results[1].PassRate = nil
	a := NewAssembler(DefaultMetadata())
	rep := a.Assemble(sr)

	row := rep.Rows[3]
	if row.PassRate != nil || row.FiguresColoured != nil {
		t.Fatalf("not-applicable rate must stay empty, got %+v", row)
	}
}

func TestMetadataOverrides(t *testing.T) {
	meta := DefaultMetadata()
	meta.Rows = []RowMetadata{{
		Number:   "13",
		Label:    "One to three injections",
		HelpText: "Latest recorded regimen in the audit year.",
		Colour:   "#123456",
	}}
	a := NewAssembler(meta)
	rep := a.Assemble(sampleScopeReport())

	row := rep.Rows[3]
	if row.Label != "One to three injections" {
		t.Fatalf("label override not applied: %q", row.Label)
	}
	if row.HelpText == "" || row.Colour != "#123456" {
		t.Fatalf("metadata not applied: %+v", row)
	}
}

func TestLoadMetadataDefaults(t *testing.T) {
	meta, err := LoadMetadata("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta.CategoryColours) == 0 {
		t.Fatalf("default metadata should colour categories")
	}
}
