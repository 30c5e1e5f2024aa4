package kpi

import (
	"context"
	"testing"
	"time"

	"github.com/npda-audit/platform/pkg/common/models"
)

func addVisit(p *models.Patient, visitDate time.Time) *models.Visit {
	p.Visits = append(p.Visits, models.Visit{
		ID:        p.ID + "-extra",
		PatientID: p.ID,
		VisitDate: pDate(visitDate),
	})
	return &p.Visits[len(p.Visits)-1]
}

func evalOne(t *testing.T, p models.Patient, number string) (models.KPIResult, models.KPIDrilldown) {
	t.Helper()
	calc := NewCalculator(1)
	result, drill, err := calc.CalculateKPI(context.Background(), snapshotOf(t, p), national(), number)
	if err != nil {
		t.Fatalf("kpi %s: %v", number, err)
	}
	return result, drill
}

func TestLatestEntryWinsForCoeliacCount(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	p.Visits[0].GlutenFreeDiet = pInt(glutenFreeDietYes)
	later := addVisit(&p, date(2025, time.October, 1))
	later.GlutenFreeDiet = pInt(2) // no

	r, _ := evalOne(t, p, "10")
	if r.TotalEligible != 0 {
		t.Fatalf("later 'no' entry should override the earlier 'yes', got %d", r.TotalEligible)
	}

	// Reverse the order of recording.
	p2 := type1Patient("p2", "PZ001")
	p2.Visits[0].GlutenFreeDiet = pInt(2)
	later2 := addVisit(&p2, date(2025, time.October, 1))
	later2.GlutenFreeDiet = pInt(glutenFreeDietYes)

	r, _ = evalOne(t, p2, "10")
	if r.TotalEligible != 1 {
		t.Fatalf("latest 'yes' entry should count, got %d", r.TotalEligible)
	}
}

func TestClosedLoopEligibilityNeedsPump(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	p.Visits[0].Treatment = pInt(treatmentFourPlusInjections)
	p.Visits[0].ClosedLoopSystem = pInt(closedLoopLicensed)

	r, _ := evalOne(t, p, "24")
	if r.TotalEligible != 0 {
		t.Fatalf("injection users are outside the closed-loop denominator, got %d eligible", r.TotalEligible)
	}

	p.Visits[0].Treatment = pInt(treatmentInsulinPumpPlus)
	r, _ = evalOne(t, p, "24")
	if r.TotalEligible != 1 || r.TotalPassed == nil || *r.TotalPassed != 1 {
		t.Fatalf("pump user on a closed loop should pass, got %+v", r)
	}
}

func TestMissingMeasurementFailsOnceEligible(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	// Complete year of care, nothing recorded: eligible for the HbA1c
	// check and failing it.
	r, d := evalOne(t, p, "25")
	if r.TotalEligible != 1 {
		t.Fatalf("expected an eligible patient, got %d", r.TotalEligible)
	}
	if r.TotalFailed == nil || *r.TotalFailed != 1 {
		t.Fatalf("missing reading should fail, got %+v", r)
	}
	if len(d.Failed) != 1 || d.Failed[0] != "p1" {
		t.Fatalf("expected p1 in failed bucket, got %v", d.Failed)
	}
}

func TestHealthCheckCompletionRateUnder12(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	v := &p.Visits[0]
	v.HbA1c = pFloat(52)
	v.HbA1cDate = pDate(date(2025, time.June, 1))
	v.Height = pFloat(140)
	v.Weight = pFloat(35)
	v.HeightWeightObservationDate = pDate(date(2025, time.June, 1))
	// Thyroid check missing: 2 of 3 expected checks done.

	r, d := evalOne(t, p, "32.1")
	if r.TotalEligible != 3 {
		t.Fatalf("an under-12 expects 3 checks, got %d", r.TotalEligible)
	}
	if r.TotalPassed == nil || *r.TotalPassed != 2 {
		t.Fatalf("expected 2 achieved checks, got %+v", r.TotalPassed)
	}
	if r.TotalFailed == nil || *r.TotalFailed != 1 {
		t.Fatalf("expected 1 missed check, got %+v", r.TotalFailed)
	}
	if len(d.Failed) != 1 {
		t.Fatalf("incomplete checks put the patient in the failed bucket")
	}

	r322, _ := evalOne(t, p, "32.2")
	if r322.TotalPassed == nil || *r322.TotalPassed != 0 {
		t.Fatalf("all-three measure should not pass with a check missing")
	}

	v.ThyroidFunctionDate = pDate(date(2025, time.July, 1))
	r322, _ = evalOne(t, p, "32.2")
	if r322.TotalPassed == nil || *r322.TotalPassed != 1 {
		t.Fatalf("all three checks complete should pass, got %+v", r322)
	}
}

func TestHealthChecks12AndOver(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	p.DateOfBirth = pDate(date(2010, time.January, 1))
	v := &p.Visits[0]
	v.HbA1c = pFloat(52)
	v.HbA1cDate = pDate(date(2025, time.June, 1))
	v.Height = pFloat(160)
	v.Weight = pFloat(52)
	v.HeightWeightObservationDate = pDate(date(2025, time.June, 1))
	v.ThyroidFunctionDate = pDate(date(2025, time.June, 1))
	v.SystolicBloodPressure = pInt(120)
	v.BloodPressureObservationDate = pDate(date(2025, time.June, 1))
	v.AlbuminCreatinineRatio = pFloat(1.2)
	v.AlbuminCreatinineRatioDate = pDate(date(2025, time.June, 1))
	v.FootExaminationObservationDate = pDate(date(2025, time.June, 1))

	r, _ := evalOne(t, p, "32.1")
	if r.TotalEligible != 6 || r.TotalPassed == nil || *r.TotalPassed != 6 {
		t.Fatalf("expected all six checks achieved, got %+v", r)
	}

	r323, _ := evalOne(t, p, "32.3")
	if r323.TotalPassed == nil || *r323.TotalPassed != 1 {
		t.Fatalf("all six checks should pass the 12-and-over measure, got %+v", r323)
	}
}

func TestFourHbA1cMeasurements(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	months := []time.Month{time.May, time.August, time.November, time.February}
	for i, m := range months {
		y := 2025
		if m == time.February {
			y = 2026
		}
		var v *models.Visit
		if i == 0 {
			v = &p.Visits[0]
		} else {
			v = addVisit(&p, date(y, m, 10))
		}
		v.VisitDate = pDate(date(y, m, 10))
		v.HbA1c = pFloat(58)
		v.HbA1cDate = pDate(date(y, m, 10))
	}

	r, _ := evalOne(t, p, "33")
	if r.TotalPassed == nil || *r.TotalPassed != 1 {
		t.Fatalf("four readings should pass, got %+v", r)
	}

	p.Visits = p.Visits[:3]
	r, _ = evalOne(t, p, "33")
	if r.TotalPassed == nil || *r.TotalPassed != 0 {
		t.Fatalf("three readings should fail, got %+v", r)
	}
}

func TestCoeliacScreenWindow(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	p.DiagnosisDate = pDate(date(2025, time.May, 1))
	p.Visits[0].HbA1cDate = pDate(date(2025, time.June, 1)) // observation in year

	p.Visits[0].CoeliacScreenDate = pDate(date(2025, time.July, 25)) // 85 days after
	r, _ := evalOne(t, p, "41")
	if r.TotalPassed == nil || *r.TotalPassed != 1 {
		t.Fatalf("screen inside the 90 day window should pass, got %+v", r)
	}

	p.Visits[0].CoeliacScreenDate = pDate(date(2025, time.September, 1)) // 123 days after
	r, _ = evalOne(t, p, "41")
	if r.TotalPassed == nil || *r.TotalPassed != 0 {
		t.Fatalf("screen outside the window should fail, got %+v", r)
	}
}

func TestCoeliacScreenOutsideAuditYearCounts(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	p.DiagnosisDate = pDate(date(2025, time.April, 10))
	p.Visits[0].HbA1cDate = pDate(date(2025, time.June, 1))

	// Screened 20 days before diagnosis, at a visit in the previous
	// audit year.
	prior := addVisit(&p, date(2025, time.March, 21))
	prior.CoeliacScreenDate = pDate(date(2025, time.March, 21))

	r, _ := evalOne(t, p, "41")
	if r.TotalEligible != 1 {
		t.Fatalf("expected an eligible new diagnosis, got %d", r.TotalEligible)
	}
	if r.TotalPassed == nil || *r.TotalPassed != 1 {
		t.Fatalf("screen inside the window should pass even when the visit predates the year, got %+v", r)
	}
}

func TestCarbCountingWindow(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	p.DiagnosisDate = pDate(date(2025, time.May, 1))
	p.Visits[0].HbA1cDate = pDate(date(2025, time.June, 1))

	p.Visits[0].CarbCountingEducationDate = pDate(date(2025, time.May, 10))
	r, _ := evalOne(t, p, "43")
	if r.TotalPassed == nil || *r.TotalPassed != 1 {
		t.Fatalf("education 9 days after diagnosis should pass, got %+v", r)
	}

	p.Visits[0].CarbCountingEducationDate = pDate(date(2025, time.May, 20))
	r, _ = evalOne(t, p, "43")
	if r.TotalPassed == nil || *r.TotalPassed != 0 {
		t.Fatalf("education 19 days after diagnosis should fail, got %+v", r)
	}

	p.Visits[0].CarbCountingEducationDate = pDate(date(2025, time.April, 20))
	r, _ = evalOne(t, p, "43")
	if r.TotalPassed == nil || *r.TotalPassed != 0 {
		t.Fatalf("education 11 days before diagnosis should fail, got %+v", r)
	}
}

func TestHbA1cStatisticsUseLatestReadingPerPatient(t *testing.T) {
	p1 := type1Patient("p1", "PZ001")
	p1.Visits[0].HbA1c = pFloat(70)
	p1.Visits[0].HbA1cDate = pDate(date(2025, time.May, 1))
	later := addVisit(&p1, date(2025, time.November, 1))
	later.HbA1c = pFloat(55)
	later.HbA1cDate = pDate(date(2025, time.November, 1))

	p2 := type1Patient("p2", "PZ002")
	p2.Visits[0].HbA1c = pFloat(65)
	p2.Visits[0].HbA1cDate = pDate(date(2025, time.June, 1))

	calc := NewCalculator(2)
	report, _, err := calc.Calculate(context.Background(), snapshotOf(t, p1, p2), national())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meanResult := findResult(t, report.Results, "44")
	if meanResult.Statistic == nil || *meanResult.Statistic != 60 {
		t.Fatalf("expected mean of latest readings (55, 65) = 60, got %v", meanResult.Statistic)
	}
	medianResult := findResult(t, report.Results, "45")
	if medianResult.Statistic == nil || *medianResult.Statistic != 60 {
		t.Fatalf("expected median 60, got %v", medianResult.Statistic)
	}
}

func TestHbA1cStatisticsExcludeStabilisationWindow(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	p.DiagnosisDate = pDate(date(2025, time.May, 1))
	p.Visits[0].HbA1c = pFloat(90)
	p.Visits[0].HbA1cDate = pDate(date(2025, time.June, 1)) // 31 days after diagnosis

	r, _ := evalOne(t, p, "44")
	if r.Statistic != nil {
		t.Fatalf("reading inside 90 days of diagnosis must not count, got %v", *r.Statistic)
	}
	if r.TotalEligible != 1 {
		t.Fatalf("patient stays in the denominator without a valid reading, got %d eligible", r.TotalEligible)
	}
}

func TestStatisticDenominatorIsBaseCohort(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	// No readings and no admissions recorded.
	for _, number := range []string{"44", "45", "46", "47"} {
		r, d := evalOne(t, p, number)
		if r.TotalEligible != 1 || r.TotalIneligible != 0 {
			t.Fatalf("kpi %s: base-cohort patient belongs in the denominator, got %+v", number, r)
		}
		if len(d.Eligible) != 1 || d.Eligible[0] != "p1" {
			t.Fatalf("kpi %s: expected p1 in the eligible bucket, got %v", number, d.Eligible)
		}
		if r.Statistic != nil {
			t.Fatalf("kpi %s: nothing recorded should leave the statistic not applicable, got %v", number, *r.Statistic)
		}
	}
}

func TestAdmissionCounts(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	v := &p.Visits[0]
	v.HospitalAdmissionDate = pDate(date(2025, time.July, 1))
	v.HospitalAdmissionReason = pInt(admissionReasonDKA)

	// Duplicate row for the same admission.
	dup := addVisit(&p, date(2025, time.July, 15))
	dup.HospitalAdmissionDate = pDate(date(2025, time.July, 1))
	dup.HospitalAdmissionReason = pInt(admissionReasonDKA)

	second := addVisit(&p, date(2025, time.December, 1))
	second.HospitalAdmissionDate = pDate(date(2025, time.December, 1))
	second.HospitalAdmissionReason = pInt(1)

	r, _ := evalOne(t, p, "46")
	if r.Statistic == nil || *r.Statistic != 2 {
		t.Fatalf("expected 2 distinct admissions, got %v", r.Statistic)
	}

	dka, _ := evalOne(t, p, "47")
	if dka.Statistic == nil || *dka.Statistic != 1 {
		t.Fatalf("expected 1 DKA admission, got %v", dka.Statistic)
	}
}

func TestAlbuminuriaLatestStage(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	p.Visits[0].AlbuminuriaStage = pInt(albuminuriaStageMicro)
	later := addVisit(&p, date(2025, time.November, 1))
	later.AlbuminuriaStage = pInt(1) // normal

	r, _ := evalOne(t, p, "49")
	if r.TotalPassed == nil || *r.TotalPassed != 0 {
		t.Fatalf("latest normal stage should not count as albuminuria, got %+v", r)
	}
}
