package submission

import (
	"time"

	"gorm.io/datatypes"
)

// Rows are private persistence shapes; the public surface speaks
// pkg/common/models types.

type submissionRow struct {
	ID             string `gorm:"primaryKey"`
	PDUCode        string `gorm:"index:idx_submissions_pdu_year"`
	AuditYear      int    `gorm:"index:idx_submissions_pdu_year"`
	Quarter        int
	SubmissionDate time.Time
	SubmittedBy    string
	Active         bool
	Provenance     datatypes.JSON
	PatientCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (submissionRow) TableName() string {
	return "submissions"
}

type patientRow struct {
	ID                    string `gorm:"primaryKey"`
	SubmissionID          string `gorm:"index"`
	NHSNumber             string
	UniqueReferenceNumber string
	Sex                   *int
	DateOfBirth           *time.Time
	Postcode              string
	Ethnicity             string
	IMDQuintile           *int
	DiabetesType          *int
	DiagnosisDate         *time.Time
	DeathDate             *time.Time
	DateLeavingService    *time.Time
	GPPracticeODSCode     string
	PDUCode               string `gorm:"index"`
	IsValid               bool
	ValidationErrors      datatypes.JSON
	CreatedAt             time.Time
}

func (patientRow) TableName() string {
	return "audit_patients"
}

// visitRow keeps the visit's key columns queryable and the full
// observation set as JSONB, mirroring the national CSV row.
type visitRow struct {
	ID           string `gorm:"primaryKey"`
	PatientID    string `gorm:"index"`
	SubmissionID string `gorm:"index"`
	VisitDate    *time.Time
	Observations datatypes.JSON
	CreatedAt    time.Time
}

func (visitRow) TableName() string {
	return "audit_visits"
}

// networkRow maps a paediatric diabetes unit to its regional network.
type networkRow struct {
	PDUCode     string `gorm:"primaryKey"`
	NetworkCode string `gorm:"index"`
}

func (networkRow) TableName() string {
	return "pdu_networks"
}
