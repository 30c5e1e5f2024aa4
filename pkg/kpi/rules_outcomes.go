package kpi

import (
	"time"

	"github.com/npda-audit/platform/pkg/common/models"
)

// Measures 44..49: clinical outcomes. HbA1c statistics take one reading
// per patient, the most recent valid one.

// latestValidHbA1c returns the most recent HbA1c reading dated inside the
// audit year and more than 90 days after diagnosis. Readings taken during
// the stabilisation window after diagnosis are excluded.
func (e *patientEval) latestValidHbA1c() *float64 {
	if e.patient.DiagnosisDate == nil {
		return nil
	}
	cutoff := e.patient.DiagnosisDate.AddDate(0, 0, diagnosisLeadDaysLong)
	v := latestRecorded(e.visitsInYear, func(v *models.Visit) (bool, *time.Time) {
		ok := v.HbA1c != nil &&
			inRange(v.HbA1cDate, e.year.Start, e.year.End) &&
			v.HbA1cDate.After(cutoff)
		return ok, v.HbA1cDate
	})
	if v == nil {
		return nil
	}
	return v.HbA1c
}

// admissionCount counts distinct qualifying hospital admissions: a valid
// reason recorded and either the admission or discharge date inside the
// audit year. Repeat rows for the same admission date collapse to one.
func (e *patientEval) admissionCount(reasonFilter *int) int {
	seen := make(map[time.Time]bool)
	unkeyed := 0
	for _, v := range e.visitsInYear {
		if v.HospitalAdmissionReason == nil {
			continue
		}
		if reasonFilter != nil && *v.HospitalAdmissionReason != *reasonFilter {
			continue
		}
		if !inRange(v.HospitalAdmissionDate, e.year.Start, e.year.End) &&
			!inRange(v.HospitalDischargeDate, e.year.Start, e.year.End) {
			continue
		}
		if v.HospitalAdmissionDate == nil {
			unkeyed++
			continue
		}
		seen[*v.HospitalAdmissionDate] = true
	}
	return len(seen) + unkeyed
}

// The statistic denominators are the full base cohort. A patient with
// no valid reading or no admissions stays eligible and contributes no
// value.
func hbA1cOutcome(e *patientEval) outcome {
	return outcome{eligible: e.base, value: e.latestValidHbA1c()}
}

func admissionOutcome(e *patientEval, reason *int) outcome {
	if !e.base {
		return outcome{}
	}
	o := outcome{eligible: true}
	if n := e.admissionCount(reason); n > 0 {
		value := float64(n)
		o.value = &value
	}
	return o
}

func outcomeDefinitions() []Definition {
	dka := admissionReasonDKA

	return []Definition{
		{
			Number: "44", Key: "kpi_44_mean_hba1c",
			Label:    "Mean HbA1c",
			Category: CategoryOutcomes, Kind: KindStatistic, agg: aggMean,
			evaluate: hbA1cOutcome,
		},
		{
			Number: "45", Key: "kpi_45_median_hba1c",
			Label:    "Median HbA1c",
			Category: CategoryOutcomes, Kind: KindStatistic, agg: aggMedian,
			evaluate: hbA1cOutcome,
		},
		{
			Number: "46", Key: "kpi_46_number_of_admissions",
			Label:    "Number of hospital admissions",
			Category: CategoryOutcomes, Kind: KindStatistic, agg: aggSum,
			evaluate: func(e *patientEval) outcome { return admissionOutcome(e, nil) },
		},
		{
			Number: "47", Key: "kpi_47_number_of_dka_admissions",
			Label:    "Number of diabetic ketoacidosis admissions",
			Category: CategoryOutcomes, Kind: KindStatistic, agg: aggSum,
			evaluate: func(e *patientEval) outcome { return admissionOutcome(e, &dka) },
		},
		{
			Number: "48", Key: "kpi_48_required_additional_psychological_support",
			Label:    "Number of patients requiring additional psychological support",
			Category: CategoryOutcomes, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.base, anyVisit(e.visitsInYear, func(v *models.Visit) bool {
					return v.PsychologicalAdditionalSupportStatus != nil &&
						*v.PsychologicalAdditionalSupportStatus == psychologicalSupportRequired
				}))
			},
		},
		{
			Number: "49", Key: "kpi_49_albuminuria_present",
			Label:    "Number of patients most recently recorded with micro or macroalbuminuria",
			Category: CategoryOutcomes, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.base, latestCodedIn(e.visitsInYear,
					func(v *models.Visit) *int { return v.AlbuminuriaStage },
					albuminuriaStageMicro, albuminuriaStageMacro))
			},
		},
	}
}
