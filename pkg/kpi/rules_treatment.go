package kpi

import "github.com/npda-audit/platform/pkg/common/models"

// Measures 13..24: insulin regimen and glucose monitoring technology.
// All read the most recently recorded entry for the audit year.

func treatmentRegimen(e *patientEval, regimen int) outcome {
	return binaryOutcome(e.base, latestCodedIn(e.visitsInYear,
		func(v *models.Visit) *int { return v.Treatment }, regimen))
}

func glucoseMonitor(visits []*models.Visit, allowed ...int) bool {
	return latestCodedIn(visits, func(v *models.Visit) *int { return v.GlucoseMonitoring }, allowed...)
}

func treatmentDefinitions() []Definition {
	regimens := []struct {
		number  string
		key     string
		label   string
		regimen int
	}{
		{"13", "kpi_13_one_to_three_injections_per_day", "Number of patients on one to three injections per day", treatmentOneToThreeInjections},
		{"14", "kpi_14_four_or_more_injections_per_day", "Number of patients on four or more injections per day", treatmentFourPlusInjections},
		{"15", "kpi_15_insulin_pump", "Number of patients using an insulin pump", treatmentInsulinPump},
		{"16", "kpi_16_one_to_three_injections_plus_other_medication", "Number of patients on one to three injections per day plus other blood glucose lowering medication", treatmentOneToThreeInjectionsPlus},
		{"17", "kpi_17_four_or_more_injections_plus_other_medication", "Number of patients on four or more injections per day plus other blood glucose lowering medication", treatmentFourPlusInjectionsPlus},
		{"18", "kpi_18_insulin_pump_plus_other_medication", "Number of patients using an insulin pump plus other blood glucose lowering medication", treatmentInsulinPumpPlus},
		{"19", "kpi_19_dietary_management_alone", "Number of patients on dietary management alone", treatmentDietaryAlone},
		{"20", "kpi_20_dietary_management_plus_other_medication", "Number of patients on dietary management plus other blood glucose lowering medication", treatmentDietaryPlus},
	}

	defs := make([]Definition, 0, 12)
	for _, r := range regimens {
		regimen := r.regimen
		defs = append(defs, Definition{
			Number: r.number, Key: r.key, Label: r.label,
			Category: CategoryTreatment, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome { return treatmentRegimen(e, regimen) },
		})
	}

	defs = append(defs,
		Definition{
			Number: "21", Key: "kpi_21_flash_glucose_monitor",
			Label:    "Number of patients using a flash glucose monitor",
			Category: CategoryGlucoseMonitors, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.base, glucoseMonitor(e.visitsInYear,
					glucoseMonitorFlash, glucoseMonitorFlashModified))
			},
		},
		Definition{
			Number: "22", Key: "kpi_22_real_time_cgm_with_alarms",
			Label:    "Number of patients using a real time continuous glucose monitor with alarms",
			Category: CategoryGlucoseMonitors, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.base, glucoseMonitor(e.visitsInYear, glucoseMonitorRealTimeCGM))
			},
		},
		Definition{
			Number: "23", Key: "kpi_23_type1_real_time_cgm_with_alarms",
			Label:    "Number of patients with Type 1 diabetes using a real time continuous glucose monitor with alarms",
			Category: CategoryGlucoseMonitors, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				return binaryOutcome(e.baseType1, glucoseMonitor(e.visitsInYear, glucoseMonitorRealTimeCGM))
			},
		},
		Definition{
			Number: "24", Key: "kpi_24_hybrid_closed_loop_system",
			Label:    "Number of insulin pump users using a hybrid closed loop system",
			Category: CategoryGlucoseMonitors, Kind: KindBinary,
			evaluate: func(e *patientEval) outcome {
				eligible := e.base && onInsulinPump(e.visitsInYear)
				return binaryOutcome(eligible, latestCodedIn(e.visitsInYear,
					func(v *models.Visit) *int { return v.ClosedLoopSystem },
					closedLoopLicensed, closedLoopDIY, closedLoopUnspecified))
			},
		},
	)
	return defs
}
