package models

import (
	"time"
)

// Event bus envelope shared by producers and consumers.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // submission.finalized, kpis.calculated
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Patient is one audited child or young person within a submission snapshot.
// Exactly one of NHSNumber or UniqueReferenceNumber identifies the patient.
// Date fields are date-only values stored at UTC midnight.
type Patient struct {
	ID                    string     `json:"id"`
	NHSNumber             string     `json:"nhs_number,omitempty"`
	UniqueReferenceNumber string     `json:"unique_reference_number,omitempty"`
	Sex                   *int       `json:"sex,omitempty"`
	DateOfBirth           *time.Time `json:"date_of_birth,omitempty"`
	Postcode              string     `json:"postcode,omitempty"`
	Ethnicity             string     `json:"ethnicity,omitempty"`
	IMDQuintile           *int       `json:"index_of_multiple_deprivation_quintile,omitempty"`
	DiabetesType          *int       `json:"diabetes_type,omitempty"`
	DiagnosisDate         *time.Time `json:"diagnosis_date,omitempty"`
	DeathDate             *time.Time `json:"death_date,omitempty"`
	DateLeavingService    *time.Time `json:"date_leaving_service,omitempty"`
	GPPracticeODSCode     string     `json:"gp_practice_ods_code,omitempty"`
	PDUCode               string     `json:"pdu_code"`
	Visits                []Visit    `json:"visits"`
}

// Visit is a single clinic contact with its recorded observations. Every
// observation is optional; absence means the item was not recorded at that
// contact, not that it is out of range.
type Visit struct {
	ID                                   string     `json:"id"`
	PatientID                            string     `json:"patient_id"`
	VisitDate                            *time.Time `json:"visit_date,omitempty"`
	Height                               *float64   `json:"height,omitempty"`
	Weight                               *float64   `json:"weight,omitempty"`
	HeightWeightObservationDate          *time.Time `json:"height_weight_observation_date,omitempty"`
	HbA1c                                *float64   `json:"hba1c,omitempty"`
	HbA1cFormat                          *int       `json:"hba1c_format,omitempty"`
	HbA1cDate                            *time.Time `json:"hba1c_date,omitempty"`
	Treatment                            *int       `json:"treatment,omitempty"`
	ClosedLoopSystem                     *int       `json:"closed_loop_system,omitempty"`
	GlucoseMonitoring                    *int       `json:"glucose_monitoring,omitempty"`
	SystolicBloodPressure                *int       `json:"systolic_blood_pressure,omitempty"`
	DiastolicBloodPressure               *int       `json:"diastolic_blood_pressure,omitempty"`
	BloodPressureObservationDate         *time.Time `json:"blood_pressure_observation_date,omitempty"`
	FootExaminationObservationDate       *time.Time `json:"foot_examination_observation_date,omitempty"`
	RetinalScreeningObservationDate      *time.Time `json:"retinal_screening_observation_date,omitempty"`
	RetinalScreeningResult               *int       `json:"retinal_screening_result,omitempty"`
	AlbuminCreatinineRatio               *float64   `json:"albumin_creatinine_ratio,omitempty"`
	AlbuminCreatinineRatioDate           *time.Time `json:"albumin_creatinine_ratio_date,omitempty"`
	AlbuminuriaStage                     *int       `json:"albuminuria_stage,omitempty"`
	TotalCholesterol                     *float64   `json:"total_cholesterol,omitempty"`
	TotalCholesterolDate                 *time.Time `json:"total_cholesterol_date,omitempty"`
	ThyroidFunctionDate                  *time.Time `json:"thyroid_function_date,omitempty"`
	ThyroidTreatmentStatus               *int       `json:"thyroid_treatment_status,omitempty"`
	CoeliacScreenDate                    *time.Time `json:"coeliac_screen_date,omitempty"`
	GlutenFreeDiet                       *int       `json:"gluten_free_diet,omitempty"`
	PsychologicalScreeningAssessmentDate *time.Time `json:"psychological_screening_assessment_date,omitempty"`
	PsychologicalAdditionalSupportStatus *int       `json:"psychological_additional_support_status,omitempty"`
	SmokingStatus                        *int       `json:"smoking_status,omitempty"`
	SmokingCessationReferralDate         *time.Time `json:"smoking_cessation_referral_date,omitempty"`
	CarbCountingEducationDate            *time.Time `json:"carbohydrate_counting_level_three_education_date,omitempty"`
	DieticianAppointmentOffered          *int       `json:"dietician_additional_appointment_offered,omitempty"`
	DieticianAppointmentDate             *time.Time `json:"dietician_additional_appointment_date,omitempty"`
	KetoneMeterTraining                  *int       `json:"ketone_meter_training,omitempty"`
	FluImmunisationRecommendedDate       *time.Time `json:"flu_immunisation_recommended_date,omitempty"`
	SickDayRulesTrainingDate             *time.Time `json:"sick_day_rules_training_date,omitempty"`
	HospitalAdmissionDate                *time.Time `json:"hospital_admission_date,omitempty"`
	HospitalDischargeDate                *time.Time `json:"hospital_discharge_date,omitempty"`
	HospitalAdmissionReason              *int       `json:"hospital_admission_reason,omitempty"`
	DKAAdditionalTherapies               *int       `json:"dka_additional_therapies,omitempty"`
	HospitalAdmissionOther               string     `json:"hospital_admission_other,omitempty"`
}

// ObservationDates returns every dated clinical observation on the visit.
// A visit counts towards a complete year of care when any of these falls
// inside the audit year.
func (v Visit) ObservationDates() []*time.Time {
	return []*time.Time{
		v.HeightWeightObservationDate,
		v.HbA1cDate,
		v.BloodPressureObservationDate,
		v.FootExaminationObservationDate,
		v.RetinalScreeningObservationDate,
		v.AlbuminCreatinineRatioDate,
		v.TotalCholesterolDate,
		v.ThyroidFunctionDate,
		v.CoeliacScreenDate,
		v.PsychologicalScreeningAssessmentDate,
	}
}

// Submission is one upload of a unit's patient cohort for an audit year.
// Only one submission per (PDU, audit year) is active at a time.
type Submission struct {
	ID             string    `json:"id"`
	PDUCode        string    `json:"pdu_code"`
	AuditYear      int       `json:"audit_year"`
	Quarter        int       `json:"quarter"`
	SubmissionDate time.Time `json:"submission_date"`
	SubmittedBy    string    `json:"submitted_by,omitempty"`
	Active         bool      `json:"active"`
	PatientCount   int       `json:"patient_count"`
}

// ScopeLevel selects the aggregation level a calculation runs at.
type ScopeLevel string

const (
	ScopePDU      ScopeLevel = "pdu"
	ScopeNetwork  ScopeLevel = "network"
	ScopeNational ScopeLevel = "national"
)

// Scope names an organisational unit, regional network or the national
// roll-up. Code is empty at national level.
type Scope struct {
	Level ScopeLevel `json:"level"`
	Code  string     `json:"code,omitempty"`
}

// KPIResult is the computed outcome of one measure at one scope.
// TotalPassed and TotalFailed are nil for cohort-count measures, and
// Statistic is nil for everything except statistic measures. PassRate is
// nil whenever the measure is not applicable for the scope (no eligible
// patients, or a non-binary kind).
type KPIResult struct {
	Number          string   `json:"number"` // "1".."49", "32.1", "32.2", "32.3"
	Key             string   `json:"key"`
	Label           string   `json:"label"`
	Category        string   `json:"category"`
	Kind            string   `json:"kind"` // count, binary, completion, statistic
	TotalEligible   int      `json:"total_eligible"`
	TotalIneligible int      `json:"total_ineligible"`
	TotalPassed     *int     `json:"total_passed,omitempty"`
	TotalFailed     *int     `json:"total_failed,omitempty"`
	Statistic       *float64 `json:"statistic,omitempty"`
	PassRate        *float64 `json:"pass_rate,omitempty"`
}

// KPIDrilldown carries the disjoint per-patient buckets behind a result.
type KPIDrilldown struct {
	Number     string   `json:"number"`
	Eligible   []string `json:"eligible"`
	Ineligible []string `json:"ineligible"`
	Passed     []string `json:"passed,omitempty"`
	Failed     []string `json:"failed,omitempty"`
}

// ScopeReport is a full calculation result for one scope and audit year.
type ScopeReport struct {
	Scope        Scope       `json:"scope"`
	AuditYear    int         `json:"audit_year"`
	PatientCount int         `json:"patient_count"`
	Results      []KPIResult `json:"results"`
	CalculatedAt time.Time   `json:"calculated_at"`
}

// CalculateRequest asks the service to compute KPIs for a scope.
type CalculateRequest struct {
	Scope     Scope `json:"scope"`
	AuditYear int   `json:"audit_year"`
}

// ReportRow is one display row of an assembled report: either a KPI with
// its presentation metadata or a category divider.
type ReportRow struct {
	Divider         bool     `json:"divider,omitempty"`
	Category        string   `json:"category,omitempty"`
	Number          string   `json:"number,omitempty"`
	Label           string   `json:"label,omitempty"`
	HelpText        string   `json:"help_text,omitempty"`
	Colour          string   `json:"colour,omitempty"`
	TotalEligible   int      `json:"total_eligible,omitempty"`
	TotalIneligible int      `json:"total_ineligible,omitempty"`
	TotalPassed     *int     `json:"total_passed,omitempty"`
	TotalFailed     *int     `json:"total_failed,omitempty"`
	Statistic       *float64 `json:"statistic,omitempty"`
	PassRate        *float64 `json:"pass_rate,omitempty"`
	FiguresColoured *int     `json:"figures_coloured,omitempty"` // waffle chart quintile fill 0..5
}

// Report is the assembled, display-ready view of a ScopeReport.
type Report struct {
	Scope        Scope       `json:"scope"`
	AuditYear    int         `json:"audit_year"`
	PatientCount int         `json:"patient_count"`
	Rows         []ReportRow `json:"rows"`
	CalculatedAt time.Time   `json:"calculated_at"`
}
