package kpi

import "github.com/npda-audit/platform/pkg/common/models"

// Measures 25..32.3: the seven key health checks and the annual
// completion-rate roll-ups. A check counts when its observation is dated
// inside the audit year; the measurement itself must be present where one
// is collected.

func (e *patientEval) hbA1cChecked() bool {
	return anyVisit(e.visitsInYear, func(v *models.Visit) bool {
		return v.HbA1c != nil && inRange(v.HbA1cDate, e.year.Start, e.year.End)
	})
}

func (e *patientEval) heightWeightChecked() bool {
	return anyVisit(e.visitsInYear, func(v *models.Visit) bool {
		return v.Height != nil && v.Weight != nil &&
			inRange(v.HeightWeightObservationDate, e.year.Start, e.year.End)
	})
}

func (e *patientEval) thyroidChecked() bool {
	return anyVisit(e.visitsInYear, func(v *models.Visit) bool {
		return inRange(v.ThyroidFunctionDate, e.year.Start, e.year.End)
	})
}

// Only the systolic reading is mandated for children and young people.
func (e *patientEval) bloodPressureChecked() bool {
	return anyVisit(e.visitsInYear, func(v *models.Visit) bool {
		return v.SystolicBloodPressure != nil &&
			inRange(v.BloodPressureObservationDate, e.year.Start, e.year.End)
	})
}

func (e *patientEval) urinaryAlbuminChecked() bool {
	return anyVisit(e.visitsInYear, func(v *models.Visit) bool {
		return v.AlbuminCreatinineRatio != nil &&
			inRange(v.AlbuminCreatinineRatioDate, e.year.Start, e.year.End)
	})
}

func (e *patientEval) retinalScreeningChecked() bool {
	return anyVisit(e.visitsInYear, func(v *models.Visit) bool {
		if v.RetinalScreeningResult == nil {
			return false
		}
		result := *v.RetinalScreeningResult
		return (result == retinalResultNormal || result == retinalResultAbnormal) &&
			inRange(v.RetinalScreeningObservationDate, e.year.Start, e.year.End)
	})
}

func (e *patientEval) footExamChecked() bool {
	return anyVisit(e.visitsInYear, func(v *models.Visit) bool {
		return inRange(v.FootExaminationObservationDate, e.year.Start, e.year.End)
	})
}

// achievedChecks counts the annual checks completed. Under-12s are expected
// to have three (HbA1c, height and weight, thyroid); 12 and over add blood
// pressure, urinary albumin and foot examination. Retinal screening is
// biennial and excluded from the completion measures.
func (e *patientEval) achievedChecks() (achieved, expected int) {
	checks := []bool{e.hbA1cChecked(), e.heightWeightChecked(), e.thyroidChecked()}
	expected = 3
	if !e.under12() {
		checks = append(checks, e.bloodPressureChecked(), e.urinaryAlbuminChecked(), e.footExamChecked())
		expected = 6
	}
	for _, done := range checks {
		if done {
			achieved++
		}
	}
	return achieved, expected
}

func healthCheckDefinitions() []Definition {
	return []Definition{
		{
			Number: "25", Key: "kpi_25_hba1c",
			Label:    "Number of patients with at least one HbA1c measurement",
			Category: CategoryKeyProcesses, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYearOfCare, e.hbA1cChecked())
			},
		},
		{
			Number: "26", Key: "kpi_26_bmi",
			Label:    "Number of patients with a height and weight measurement",
			Category: CategoryKeyProcesses, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYearOfCare, e.heightWeightChecked())
			},
		},
		{
			Number: "27", Key: "kpi_27_thyroid_screen",
			Label:    "Number of patients with a thyroid function screen",
			Category: CategoryKeyProcesses, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYearOfCare, e.thyroidChecked())
			},
		},
		{
			Number: "28", Key: "kpi_28_blood_pressure",
			Label:    "Number of patients aged 12 or over with a blood pressure measurement",
			Category: CategoryKeyProcesses, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYear12, e.bloodPressureChecked())
			},
		},
		{
			Number: "29", Key: "kpi_29_urinary_albumin",
			Label:    "Number of patients aged 12 or over with a urinary albumin measurement",
			Category: CategoryKeyProcesses, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYear12, e.urinaryAlbuminChecked())
			},
		},
		{
			Number: "30", Key: "kpi_30_retinal_screening",
			Label:    "Number of patients aged 12 or over with a retinal screening result",
			Category: CategoryKeyProcesses, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYear12, e.retinalScreeningChecked())
			},
		},
		{
			Number: "31", Key: "kpi_31_foot_examination",
			Label:    "Number of patients aged 12 or over with a foot examination",
			Category: CategoryKeyProcesses, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYear12, e.footExamChecked())
			},
		},
		{
			Number: "32.1", Key: "kpi_32_1_health_check_completion_rate",
			Label:    "Health check completion rate",
			Category: CategoryKeyProcesses, Kind: KindCompletion,
			evaluate: func(e *patientEval) outcome {
				if !e.completeYearOfCare {
					return outcome{}
				}
				achieved, expected := e.achievedChecks()
				return outcome{eligible: true, achieved: achieved, expected: expected}
			},
		},
		{
			Number: "32.2", Key: "kpi_32_2_health_checks_under_12",
			Label:    "Number of patients under 12 receiving all three health checks",
			Category: CategoryKeyProcesses, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				eligible := e.completeYearOfCare && e.under12()
				achieved, expected := e.achievedChecks()
				return binaryOutcome(eligible, achieved == expected)
			},
		},
		{
			Number: "32.3", Key: "kpi_32_3_health_checks_12_plus",
			Label:    "Number of patients aged 12 or over receiving all six health checks",
			Category: CategoryKeyProcesses, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				eligible := e.completeYearOfCare && !e.under12()
				achieved, expected := e.achievedChecks()
				return binaryOutcome(eligible, achieved == expected)
			},
		},
	}
}
