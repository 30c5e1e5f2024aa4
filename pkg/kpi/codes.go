package kpi

import "github.com/npda-audit/platform/pkg/common/models"

// Coded values from the national audit data dictionary.
const (
	treatmentOneToThreeInjections     = 1
	treatmentFourPlusInjections       = 2
	treatmentInsulinPump              = 3
	treatmentOneToThreeInjectionsPlus = 4
	treatmentFourPlusInjectionsPlus   = 5
	treatmentInsulinPumpPlus          = 6
	treatmentDietaryAlone             = 7
	treatmentDietaryPlus              = 8

	glucoseMonitorFlash         = 2
	glucoseMonitorFlashModified = 3
	glucoseMonitorRealTimeCGM   = 4

	closedLoopLicensed    = 2
	closedLoopDIY         = 3
	closedLoopUnspecified = 4

	glutenFreeDietYes = 1

	thyroidTreatmentThyroxine   = 2
	thyroidTreatmentAntithyroid = 3

	ketoneMeterTrained = 1

	retinalResultNormal   = 1
	retinalResultAbnormal = 2

	smokingStatusNever   = 1
	smokingStatusCurrent = 2

	dieticianAppointmentOfferedYes = 1

	psychologicalSupportRequired = 1

	albuminuriaStageMicro = 2
	albuminuriaStageMacro = 3

	admissionReasonDKA = 2
)

func countOutcome(eligible bool) outcome {
	return outcome{eligible: eligible}
}

func binaryOutcome(eligible, passed bool) outcome {
	return outcome{eligible: eligible, passed: eligible && passed}
}

func onInsulinPump(visits []*models.Visit) bool {
	return latestCodedIn(visits, func(v *models.Visit) *int { return v.Treatment },
		treatmentInsulinPump, treatmentInsulinPumpPlus)
}
