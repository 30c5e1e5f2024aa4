package kpi

import (
	"errors"

	"github.com/npda-audit/platform/pkg/audit"
	"github.com/npda-audit/platform/pkg/common/models"
)

var (
	// ErrUnknownKPI is a configuration error: a caller asked for a measure
	// number the registry does not define.
	ErrUnknownKPI = errors.New("unknown kpi number")

	// ErrUnknownScope is returned for a scope level the engine cannot
	// resolve to a patient set.
	ErrUnknownScope = errors.New("unknown scope level")
)

// Kind classifies how a measure's result is counted.
type Kind string

const (
	// KindCount measures report cohort sizes only; no pass/fail split.
	KindCount Kind = "count"
	// KindBinary measures split every eligible patient into passed or failed.
	KindBinary Kind = "binary"
	// KindCompletion measures compare achieved health checks against the
	// number expected for the cohort.
	KindCompletion Kind = "completion"
	// KindStatistic measures aggregate a per-patient numeric value.
	KindStatistic Kind = "statistic"
)

// aggregation selects how statistic measures combine per-patient values.
type aggregation int

const (
	aggNone aggregation = iota
	aggMean
	aggMedian
	aggSum
)

// Category groups measures for reporting. Order of declaration is the
// canonical report order.
const (
	CategoryCohort          = "Cohort and Denominators"
	CategoryTreatment       = "Insulin Regimen"
	CategoryGlucoseMonitors = "Glucose Monitoring and Technology"
	CategoryKeyProcesses    = "Seven Key Processes"
	CategoryAdditionalCare  = "Additional Care Processes"
	CategoryCareAtDiagnosis = "Care at Diagnosis"
	CategoryOutcomes        = "Outcomes"
)

// outcome is the result of evaluating one measure for one patient.
type outcome struct {
	eligible bool
	passed   bool     // binary measures, meaningful only when eligible
	value    *float64 // statistic measures, per-patient contribution
	expected int      // completion measures
	achieved int
}

// Definition is one registry entry. Evaluate is pure: it reads the
// precomputed patient facts and returns the patient's outcome for this
// measure.
type Definition struct {
	Number   string
	Key      string
	Label    string
	Category string
	Kind     Kind

	agg      aggregation
	evaluate func(e *patientEval) outcome
}

// PatientKPIOutcome is the per-patient view of one measure, used by the
// drill-down surface.
type PatientKPIOutcome struct {
	Number  string `json:"number"`
	Key     string `json:"key"`
	Label   string `json:"label"`
	Outcome string `json:"outcome"` // eligible, ineligible, passed, failed
}

// Snapshot is the immutable patient set a calculation runs against.
// Networks maps a unit's PZ code to its regional network code.
type Snapshot struct {
	Year     audit.Year
	Patients []models.Patient
	Networks map[string]string
}
