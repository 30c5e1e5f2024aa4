package kpi

import (
	"time"

	"github.com/npda-audit/platform/pkg/common/models"
)

// Measures 41..43: screening and education delivered around the point of
// diagnosis. Dates are judged relative to the diagnosis date, not the
// audit year: the window around an early-April diagnosis reaches into the
// previous year, so every visit is searched, not just the in-year ones.

func withinDaysOf(d *time.Time, ref time.Time, daysBefore, daysAfter int) bool {
	if d == nil {
		return false
	}
	earliest := ref.AddDate(0, 0, -daysBefore)
	latest := ref.AddDate(0, 0, daysAfter)
	return !d.Before(earliest) && !d.After(latest)
}

func careAtDiagnosisDefinitions() []Definition {
	return []Definition{
		{
			Number: "41", Key: "kpi_41_coeliac_disease_screening",
			Label:    "Number of newly diagnosed patients screened for coeliac disease within 90 days of diagnosis",
			Category: CategoryCareAtDiagnosis, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				if !e.newType1Diag90 || e.patient.DiagnosisDate == nil {
					return outcome{}
				}
				diagnosis := *e.patient.DiagnosisDate
				return binaryOutcome(true, anyVisit(e.visits, func(v *models.Visit) bool {
					return withinDaysOf(v.CoeliacScreenDate, diagnosis, diagnosisLeadDaysLong, diagnosisLeadDaysLong)
				}))
			},
		},
		{
			Number: "42", Key: "kpi_42_thyroid_disease_screening",
			Label:    "Number of newly diagnosed patients screened for thyroid disease within 90 days of diagnosis",
			Category: CategoryCareAtDiagnosis, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				if !e.newType1Diag90 || e.patient.DiagnosisDate == nil {
					return outcome{}
				}
				diagnosis := *e.patient.DiagnosisDate
				return binaryOutcome(true, anyVisit(e.visits, func(v *models.Visit) bool {
					return withinDaysOf(v.ThyroidFunctionDate, diagnosis, diagnosisLeadDaysLong, diagnosisLeadDaysLong)
				}))
			},
		},
		{
			Number: "43", Key: "kpi_43_carbohydrate_counting_education",
			Label:    "Number of newly diagnosed patients given level three carbohydrate counting education around diagnosis",
			Category: CategoryCareAtDiagnosis, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				if !e.newType1Diag14 || e.patient.DiagnosisDate == nil {
					return outcome{}
				}
				diagnosis := *e.patient.DiagnosisDate
				return binaryOutcome(true, anyVisit(e.visits, func(v *models.Visit) bool {
					return withinDaysOf(v.CarbCountingEducationDate, diagnosis, 7, diagnosisLeadDaysMin)
				}))
			},
		},
	}
}
