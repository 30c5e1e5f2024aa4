package kpi

import "github.com/npda-audit/platform/pkg/common/models"

// Measures 33..40: additional care processes beyond the seven key checks.

func additionalCareDefinitions() []Definition {
	return []Definition{
		{
			Number: "33", Key: "kpi_33_hba1c_4plus",
			Label:    "Number of patients with four or more HbA1c measurements",
			Category: CategoryAdditionalCare, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				n := countVisits(e.visitsInYear, func(v *models.Visit) bool {
					return v.HbA1c != nil && inRange(v.HbA1cDate, e.year.Start, e.year.End)
				})
				return binaryOutcome(e.completeYearOfCare, n >= 4)
			},
		},
		{
			Number: "34", Key: "kpi_34_psychological_assessment",
			Label:    "Number of patients offered a psychological assessment",
			Category: CategoryAdditionalCare, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYearOfCare, anyVisit(e.visitsInYear, func(v *models.Visit) bool {
					return inRange(v.PsychologicalScreeningAssessmentDate, e.year.Start, e.year.End)
				}))
			},
		},
		{
			Number: "35", Key: "kpi_35_smoking_status_screened",
			Label:    "Number of patients aged 12 or over with a recorded smoking status",
			Category: CategoryAdditionalCare, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYear12, anyVisit(e.visitsInYear, func(v *models.Visit) bool {
					return v.SmokingStatus != nil &&
						(*v.SmokingStatus == smokingStatusNever || *v.SmokingStatus == smokingStatusCurrent)
				}))
			},
		},
		{
			Number: "36", Key: "kpi_36_referral_to_smoking_cessation_service",
			Label:    "Number of patients aged 12 or over referred to a smoking cessation service",
			Category: CategoryAdditionalCare, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYear12, anyVisit(e.visitsInYear, func(v *models.Visit) bool {
					return inRange(v.SmokingCessationReferralDate, e.year.Start, e.year.End)
				}))
			},
		},
		{
			Number: "37", Key: "kpi_37_additional_dietetic_appointment_offered",
			Label:    "Number of patients offered an additional dietetic appointment",
			Category: CategoryAdditionalCare, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYearOfCare, anyVisit(e.visitsInYear, func(v *models.Visit) bool {
					return v.DieticianAppointmentOffered != nil &&
						*v.DieticianAppointmentOffered == dieticianAppointmentOfferedYes
				}))
			},
		},
		{
			Number: "38", Key: "kpi_38_patients_attending_additional_dietetic_appointment",
			Label:    "Number of patients attending an additional dietetic appointment",
			Category: CategoryAdditionalCare, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYearOfCare, anyVisit(e.visitsInYear, func(v *models.Visit) bool {
					return inRange(v.DieticianAppointmentDate, e.year.Start, e.year.End)
				}))
			},
		},
		{
			Number: "39", Key: "kpi_39_influenza_immunisation_recommended",
			Label:    "Number of patients recommended an influenza immunisation",
			Category: CategoryAdditionalCare, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.completeYearOfCare, anyVisit(e.visitsInYear, func(v *models.Visit) bool {
					return inRange(v.FluImmunisationRecommendedDate, e.year.Start, e.year.End)
				}))
			},
		},
		{
			Number: "40", Key: "kpi_40_sick_day_rules_advice",
			Label:    "Number of patients given sick day rules advice",
			Category: CategoryAdditionalCare, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.base, anyVisit(e.visitsInYear, func(v *models.Visit) bool {
					return inRange(v.SickDayRulesTrainingDate, e.year.Start, e.year.End)
				}))
			},
		},
	}
}
