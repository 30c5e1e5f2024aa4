package kpi

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/npda-audit/platform/pkg/common/models"
)

// mixedSnapshot spreads patients across three units and two networks:
// a well-recorded Type 1 patient, a newly diagnosed patient, a Type 2
// patient, a patient with no visits and an older teenager.
func mixedSnapshot(t *testing.T) *Snapshot {
	t.Helper()

	p1 := type1Patient("p1", "PZ001")
	p1.Visits[0].HbA1c = pFloat(55)
	p1.Visits[0].HbA1cDate = pDate(date(2025, time.June, 1))
	p1.Visits[0].Treatment = pInt(treatmentInsulinPump)
	p1.Visits[0].ClosedLoopSystem = pInt(closedLoopLicensed)

	p2 := type1Patient("p2", "PZ001")
	p2.DiagnosisDate = pDate(date(2025, time.May, 1))
	p2.Visits[0].HbA1cDate = pDate(date(2025, time.June, 1))
	p2.Visits[0].CoeliacScreenDate = pDate(date(2025, time.May, 20))

	p3 := type1Patient("p3", "PZ002")
	p3.DiabetesType = pInt(2)

	p4 := type1Patient("p4", "PZ002")
	p4.Visits = nil

	p5 := type1Patient("p5", "PZ003")
	p5.DateOfBirth = pDate(date(2010, time.February, 1)) // 15 at year start
	p5.Visits[0].SystolicBloodPressure = pInt(118)
	p5.Visits[0].BloodPressureObservationDate = pDate(date(2025, time.June, 1))

	return snapshotOf(t, p1, p2, p3, p4, p5)
}

func national() models.Scope { return models.Scope{Level: models.ScopeNational} }

func TestSingleReadingPassesHbA1cCheck(t *testing.T) {
	calc := NewCalculator(4)
	report, drills, err := calc.Calculate(context.Background(), mixedSnapshot(t), national())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// p1 and p5 have a complete year of Type 1 care; only p1 has a reading.
	r := findResult(t, report.Results, "25")
	if r.TotalEligible != 2 {
		t.Fatalf("expected two complete-year patients, got %d", r.TotalEligible)
	}
	if r.TotalPassed == nil || *r.TotalPassed != 1 {
		t.Fatalf("one in-year HbA1c reading should pass, got %+v", r.TotalPassed)
	}
	if r.PassRate == nil || *r.PassRate != 50 {
		t.Fatalf("expected 50%% pass rate, got %v", r.PassRate)
	}

	d := findDrilldown(t, drills, "25")
	if len(d.Passed) != 1 || d.Passed[0] != "p1" {
		t.Fatalf("expected p1 in the passed bucket, got %v", d.Passed)
	}
}

func TestBucketPartitionInvariants(t *testing.T) {
	calc := NewCalculator(2)
	snap := mixedSnapshot(t)
	report, drills, err := calc.Calculate(context.Background(), snap, national())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, r := range report.Results {
		d := findDrilldown(t, drills, r.Number)
		if r.Kind != string(KindCompletion) {
			if got := r.TotalEligible + r.TotalIneligible; got != len(snap.Patients) {
				t.Fatalf("kpi %s: eligible %d + ineligible %d != %d patients",
					r.Number, r.TotalEligible, r.TotalIneligible, len(snap.Patients))
			}
		}
		if r.Kind == string(KindBinary) {
			if r.TotalPassed == nil || r.TotalFailed == nil {
				t.Fatalf("kpi %s: binary measure without pass/fail totals", r.Number)
			}
			if *r.TotalPassed+*r.TotalFailed != r.TotalEligible {
				t.Fatalf("kpi %s: passed %d + failed %d != eligible %d",
					r.Number, *r.TotalPassed, *r.TotalFailed, r.TotalEligible)
			}
			if len(d.Passed)+len(d.Failed) != len(d.Eligible) {
				t.Fatalf("kpi %s: drilldown buckets do not partition eligible", r.Number)
			}
		}

		seen := make(map[string]bool)
		for _, id := range append(d.Eligible, d.Ineligible...) {
			if seen[id] {
				t.Fatalf("kpi %s: patient %s in two buckets", r.Number, id)
			}
			seen[id] = true
		}
	}
}

func TestZeroVisitPatientIneligibleEverywhere(t *testing.T) {
	calc := NewCalculator(2)
	_, drills, err := calc.Calculate(context.Background(), mixedSnapshot(t), national())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, d := range drills {
		found := false
		for _, id := range d.Ineligible {
			if id == "p4" {
				found = true
			}
		}
		if !found {
			t.Fatalf("kpi %s: patient without visits should be ineligible", d.Number)
		}
	}
}

func TestEmptyScopeYieldsZeroRows(t *testing.T) {
	calc := NewCalculator(2)
	report, _, err := calc.Calculate(context.Background(), mixedSnapshot(t),
		models.Scope{Level: models.ScopePDU, Code: "PZ999"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.PatientCount != 0 {
		t.Fatalf("expected an empty scope, got %d patients", report.PatientCount)
	}
	if len(report.Results) != len(Registry()) {
		t.Fatalf("empty scope must still report every measure")
	}
	for _, r := range report.Results {
		if r.TotalEligible != 0 || r.TotalIneligible != 0 {
			t.Fatalf("kpi %s: expected zero counts, got %+v", r.Number, r)
		}
		if r.PassRate != nil {
			t.Fatalf("kpi %s: pass rate should be not applicable, got %v", r.Number, *r.PassRate)
		}
		if r.Statistic != nil {
			t.Fatalf("kpi %s: statistic should be not applicable, got %v", r.Number, *r.Statistic)
		}
	}
}

func TestNationalMatchesUnitSums(t *testing.T) {
	calc := NewCalculator(2)
	snap := mixedSnapshot(t)

	nationalReport, _, err := calc.Calculate(context.Background(), snap, national())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unitEligible := make(map[string]int)
	unitPassed := make(map[string]int)
	for _, pdu := range []string{"PZ001", "PZ002", "PZ003"} {
		report, _, err := calc.Calculate(context.Background(), snap,
			models.Scope{Level: models.ScopePDU, Code: pdu})
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", pdu, err)
		}
		for _, r := range report.Results {
			unitEligible[r.Number] += r.TotalEligible
			if r.TotalPassed != nil {
				unitPassed[r.Number] += *r.TotalPassed
			}
		}
	}

	for _, r := range nationalReport.Results {
		if unitEligible[r.Number] != r.TotalEligible {
			t.Fatalf("kpi %s: national eligible %d != unit sum %d",
				r.Number, r.TotalEligible, unitEligible[r.Number])
		}
		if r.TotalPassed != nil && unitPassed[r.Number] != *r.TotalPassed {
			t.Fatalf("kpi %s: national passed %d != unit sum %d",
				r.Number, *r.TotalPassed, unitPassed[r.Number])
		}
	}
}

func TestNetworkScope(t *testing.T) {
	calc := NewCalculator(2)
	report, _, err := calc.Calculate(context.Background(), mixedSnapshot(t),
		models.Scope{Level: models.ScopeNetwork, Code: "N1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// N1 covers PZ001 and PZ002: four of the five patients.
	if report.PatientCount != 4 {
		t.Fatalf("expected 4 patients in network N1, got %d", report.PatientCount)
	}
}

func TestCalculationIsIdempotent(t *testing.T) {
	calc := NewCalculator(3)
	snap := mixedSnapshot(t)

	first, firstDrills, err := calc.Calculate(context.Background(), snap, national())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, secondDrills, err := calc.Calculate(context.Background(), snap, national())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first.Results, second.Results) {
		t.Fatalf("two runs over the same snapshot disagree")
	}
	if !reflect.DeepEqual(firstDrills, secondDrills) {
		t.Fatalf("two runs produced different drilldown buckets")
	}
}

func TestUnknownScopeLevel(t *testing.T) {
	calc := NewCalculator(2)
	_, _, err := calc.Calculate(context.Background(), mixedSnapshot(t),
		models.Scope{Level: "region", Code: "X"})
	if !errors.Is(err, ErrUnknownScope) {
		t.Fatalf("expected ErrUnknownScope, got %v", err)
	}
}

func TestCalculateSingleKPI(t *testing.T) {
	calc := NewCalculator(2)
	result, drill, err := calc.CalculateKPI(context.Background(), mixedSnapshot(t), national(), "15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalPassed == nil || *result.TotalPassed != 1 {
		t.Fatalf("expected one pump user, got %+v", result.TotalPassed)
	}
	if len(drill.Passed) != 1 || drill.Passed[0] != "p1" {
		t.Fatalf("expected p1 on a pump, got %v", drill.Passed)
	}

	if _, _, err := calc.CalculateKPI(context.Background(), mixedSnapshot(t), national(), "7.5"); !errors.Is(err, ErrUnknownKPI) {
		t.Fatalf("expected ErrUnknownKPI, got %v", err)
	}
}

func TestPatientOutcomes(t *testing.T) {
	snap := mixedSnapshot(t)
	outcomes, err := PatientOutcomes(snap, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != len(Registry()) {
		t.Fatalf("expected an outcome per measure, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Number == "25" && o.Outcome != "passed" {
			t.Fatalf("expected p1 to pass the HbA1c check, got %s", o.Outcome)
		}
	}

	if _, err := PatientOutcomes(snap, "missing"); err == nil {
		t.Fatalf("expected an error for an unknown patient")
	}
}
