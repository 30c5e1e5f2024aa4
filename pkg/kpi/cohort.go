package kpi

import (
	"github.com/npda-audit/platform/pkg/audit"
	"github.com/npda-audit/platform/pkg/common/models"
)

// patientEval holds the facts and cohort memberships computed once per
// patient, then shared by every rule evaluation. All date comparisons are
// against the audit year bounds, inclusive.
type patientEval struct {
	patient *models.Patient
	year    audit.Year

	// All visits in submission order, and the subset dated inside the
	// audit year.
	visits       []*models.Visit
	visitsInYear []*models.Visit

	hasIdentity     bool
	hasDOB          bool
	ageAtStart      int // completed years at the audit year start, -1 without a date of birth
	type1           bool
	diagnosedInYear bool
	diedInYear      bool
	leftInYear      bool
	// Any dated clinical observation on a visit inside the audit year.
	observationInYear bool

	// Cohort measures. base is the audit cohort every per-measure
	// denominator derives from.
	base               bool // eligible for the audit year
	newDiagnosis       bool // base, diagnosed during the year
	baseType1          bool // base, Type 1 diabetes
	baseType1Aged12    bool // base, Type 1, aged 12 or over at year start
	completeYearOfCare bool // Type 1 under full care for the whole year
	completeYear12     bool // complete year of care, aged 12 or over
	newType1           bool // newly diagnosed Type 1 with an observation in year
	newType1Diag90     bool // newType1, diagnosed at least 90 days before year end
	newType1Diag14     bool // newType1, diagnosed more than 14 days before year end
}

const (
	diabetesType1 = 1
	diabetesType2 = 2

	maxAgeAtYearStart     = 25
	healthCheckAgeCutoff  = 12
	diagnosisLeadDaysLong = 90
	diagnosisLeadDaysMin  = 14
)

func newPatientEval(p *models.Patient, year audit.Year) *patientEval {
	e := &patientEval{patient: p, year: year, ageAtStart: -1}

	for i := range p.Visits {
		v := &p.Visits[i]
		e.visits = append(e.visits, v)
		if inRange(v.VisitDate, year.Start, year.End) {
			e.visitsInYear = append(e.visitsInYear, v)
			for _, d := range v.ObservationDates() {
				if inRange(d, year.Start, year.End) {
					e.observationInYear = true
					break
				}
			}
		}
	}

	e.hasIdentity = p.NHSNumber != "" || p.UniqueReferenceNumber != ""
	e.hasDOB = p.DateOfBirth != nil
	if e.hasDOB {
		e.ageAtStart = audit.AgeInYears(*p.DateOfBirth, year.Start)
	}
	e.type1 = p.DiabetesType != nil && *p.DiabetesType == diabetesType1
	e.diagnosedInYear = inRange(p.DiagnosisDate, year.Start, year.End)
	e.diedInYear = inRange(p.DeathDate, year.Start, year.End)
	e.leftInYear = inRange(p.DateLeavingService, year.Start, year.End)

	e.computeMeasures()
	return e
}

func (e *patientEval) computeMeasures() {
	p := e.patient
	year := e.year

	diagnosedByYearEnd := p.DiagnosisDate != nil && !p.DiagnosisDate.After(year.End)
	leftBeforeYearStart := p.DateLeavingService != nil && p.DateLeavingService.Before(year.Start)

	// Death inside the year is a boundary for individual observations, not
	// a cohort exclusion.
	e.base = e.hasIdentity &&
		e.hasDOB &&
		len(e.visitsInYear) > 0 &&
		e.ageAtStart >= 0 && e.ageAtStart < maxAgeAtYearStart &&
		diagnosedByYearEnd &&
		!leftBeforeYearStart

	e.newDiagnosis = e.base && e.diagnosedInYear
	e.baseType1 = e.base && e.type1
	e.baseType1Aged12 = e.baseType1 && e.ageAtStart >= healthCheckAgeCutoff

	fullYear := !e.diagnosedInYear && !e.leftInYear && !e.diedInYear
	e.completeYearOfCare = e.baseType1 && fullYear

	// The 12-and-over complete-year cohort has no upper age cap and needs a
	// dated clinical observation rather than just a visit.
	e.completeYear12 = e.hasIdentity &&
		e.hasDOB &&
		e.type1 &&
		e.ageAtStart >= healthCheckAgeCutoff &&
		e.observationInYear &&
		fullYear &&
		!leftBeforeYearStart

	e.newType1 = e.hasIdentity &&
		e.hasDOB &&
		e.ageAtStart >= 0 && e.ageAtStart < maxAgeAtYearStart &&
		e.type1 &&
		e.diagnosedInYear &&
		e.observationInYear

	if e.newType1 && p.DiagnosisDate != nil {
		e.newType1Diag90 = !p.DiagnosisDate.After(year.End.AddDate(0, 0, -diagnosisLeadDaysLong))
		e.newType1Diag14 = p.DiagnosisDate.Before(year.End.AddDate(0, 0, -diagnosisLeadDaysMin))
	}
}

func (e *patientEval) under12() bool {
	return e.ageAtStart >= 0 && e.ageAtStart < healthCheckAgeCutoff
}
