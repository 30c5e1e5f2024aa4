package kpi

import "github.com/npda-audit/platform/pkg/common/models"

// Cohort count measures 1..12. These size the denominators used elsewhere
// in the report; patients are eligible or ineligible, never pass or fail.

func countDefinitions() []Definition {
	return []Definition{
		{
			Number: "1", Key: "kpi_1_total_eligible",
			Label:    "Total number of eligible patients",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome { return countOutcome(e.base) },
		},
		{
			Number: "2", Key: "kpi_2_total_new_diagnoses",
			Label:    "Total number of new diagnoses within the audit period",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome { return countOutcome(e.newDiagnosis) },
		},
		{
			Number: "3", Key: "kpi_3_total_t1dm",
			Label:    "Total number of eligible patients with Type 1 diabetes",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome { return countOutcome(e.baseType1) },
		},
		{
			Number: "4", Key: "kpi_4_total_t1dm_gte_12yo",
			Label:    "Total number of patients with Type 1 diabetes aged 12 or over",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome { return countOutcome(e.baseType1Aged12) },
		},
		{
			Number: "5", Key: "kpi_5_total_t1dm_complete_year",
			Label:    "Total number of patients with Type 1 diabetes with a complete year of care",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome { return countOutcome(e.completeYearOfCare) },
		},
		{
			Number: "6", Key: "kpi_6_total_t1dm_complete_year_gte_12yo",
			Label:    "Total number of patients with Type 1 diabetes aged 12 or over with a complete year of care",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome { return countOutcome(e.completeYear12) },
		},
		{
			Number: "7", Key: "kpi_7_total_new_diagnoses_t1dm",
			Label:    "Total number of new diagnoses of Type 1 diabetes",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome { return countOutcome(e.newType1) },
		},
		{
			Number: "8", Key: "kpi_8_total_deaths",
			Label:    "Number of patients who died within the audit period",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome { return countOutcome(e.base && e.diedInYear) },
		},
		{
			Number: "9", Key: "kpi_9_total_service_transitions",
			Label:    "Number of patients who transitioned or left the service within the audit period",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome { return countOutcome(e.base && e.leftInYear) },
		},
		{
			Number: "10", Key: "kpi_10_total_coeliacs",
			Label:    "Number of patients most recently recorded on a gluten free diet",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome {
				return countOutcome(e.base && latestCodedIn(e.visitsInYear,
					func(v *models.Visit) *int { return v.GlutenFreeDiet }, glutenFreeDietYes))
			},
		},
		{
			Number: "11", Key: "kpi_11_total_thyroids",
			Label:    "Number of patients most recently recorded as being treated for a thyroid disorder",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome {
				return countOutcome(e.base && latestCodedIn(e.visitsInYear,
					func(v *models.Visit) *int { return v.ThyroidTreatmentStatus },
					thyroidTreatmentThyroxine, thyroidTreatmentAntithyroid))
			},
		},
		{
			Number: "12", Key: "kpi_12_total_ketone_test_equipment",
			Label:    "Number of patients most recently recorded as using blood ketone testing equipment",
			Category: CategoryCohort, Kind: KindCount,
			evaluate: func(e *patientEval) outcome {
				return countOutcome(e.base && latestCodedIn(e.visitsInYear,
					func(v *models.Visit) *int { return v.KetoneMeterTraining }, ketoneMeterTrained))
			},
		},
	}
}
