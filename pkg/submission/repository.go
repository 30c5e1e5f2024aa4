package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/npda-audit/platform/pkg/audit"
	"github.com/npda-audit/platform/pkg/common/models"
	"github.com/npda-audit/platform/pkg/kpi"
)

var ErrNotFound = errors.New("submission not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&submissionRow{}, &patientRow{}, &visitRow{}, &networkRow{})
}

// Create stores a submission and its cohort, deactivating any previous
// active submission for the same unit and audit year. Each patient is
// validated on the way in; failures are stored against the record rather
// than rejecting the upload.
func (r *Repository) Create(ctx context.Context, sub *models.Submission, patients []models.Patient) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&submissionRow{}).
			Where("pdu_code = ? AND audit_year = ? AND active = ?", sub.PDUCode, sub.AuditYear, true).
			Updates(map[string]interface{}{"active": false, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("deactivate previous submission: %w", err)
		}

		provenance, err := json.Marshal(map[string]interface{}{
			"submitted_by":    sub.SubmittedBy,
			"submission_date": sub.SubmissionDate,
		})
		if err != nil {
			return err
		}

		row := submissionRow{
			ID:             sub.ID,
			PDUCode:        sub.PDUCode,
			AuditYear:      sub.AuditYear,
			Quarter:        sub.Quarter,
			SubmissionDate: sub.SubmissionDate,
			SubmittedBy:    sub.SubmittedBy,
			Active:         true,
			Provenance:     datatypes.JSON(provenance),
			PatientCount:   len(patients),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create submission: %w", err)
		}

		for i := range patients {
			if err := r.createPatient(tx, sub, &patients[i], now); err != nil {
				return err
			}
		}

		sub.Active = true
		sub.PatientCount = len(patients)
		return nil
	})
}

func (r *Repository) createPatient(tx *gorm.DB, sub *models.Submission, p *models.Patient, now time.Time) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.PDUCode == "" {
		p.PDUCode = sub.PDUCode
	}

	validationErrors := ValidatePatient(p)
	errsJSON, err := json.Marshal(validationErrors)
	if err != nil {
		return err
	}

	row := patientRow{
		ID:                    p.ID,
		SubmissionID:          sub.ID,
		NHSNumber:             p.NHSNumber,
		UniqueReferenceNumber: p.UniqueReferenceNumber,
		Sex:                   p.Sex,
		DateOfBirth:           p.DateOfBirth,
		Postcode:              p.Postcode,
		Ethnicity:             p.Ethnicity,
		IMDQuintile:           p.IMDQuintile,
		DiabetesType:          p.DiabetesType,
		DiagnosisDate:         p.DiagnosisDate,
		DeathDate:             p.DeathDate,
		DateLeavingService:    p.DateLeavingService,
		GPPracticeODSCode:     p.GPPracticeODSCode,
		PDUCode:               p.PDUCode,
		IsValid:               len(validationErrors) == 0,
		ValidationErrors:      datatypes.JSON(errsJSON),
		CreatedAt:             now,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("create patient %s: %w", p.ID, err)
	}

	for i := range p.Visits {
		v := &p.Visits[i]
		if v.ID == "" {
			v.ID = uuid.New().String()
		}
		v.PatientID = p.ID

		observations, err := json.Marshal(v)
		if err != nil {
			return err
		}
		visitRecord := visitRow{
			ID:           v.ID,
			PatientID:    p.ID,
			SubmissionID: sub.ID,
			VisitDate:    v.VisitDate,
			Observations: datatypes.JSON(observations),
			CreatedAt:    now,
		}
		if err := tx.Create(&visitRecord).Error; err != nil {
			return fmt.Errorf("create visit %s: %w", v.ID, err)
		}
	}
	return nil
}

// Active returns the active submission for a unit and audit year.
func (r *Repository) Active(ctx context.Context, pduCode string, auditYear int) (*models.Submission, error) {
	var row submissionRow
	result := r.db.WithContext(ctx).
		First(&row, "pdu_code = ? AND audit_year = ? AND active = ?", pduCode, auditYear, true)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	sub := toSubmission(row)
	return &sub, nil
}

// List returns every submission for an audit year, newest first.
func (r *Repository) List(ctx context.Context, auditYear int) ([]models.Submission, error) {
	var rows []submissionRow
	if err := r.db.WithContext(ctx).
		Where("audit_year = ?", auditYear).
		Order("submission_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSubmission(row))
	}
	return out, nil
}

func toSubmission(row submissionRow) models.Submission {
	return models.Submission{
		ID:             row.ID,
		PDUCode:        row.PDUCode,
		AuditYear:      row.AuditYear,
		Quarter:        row.Quarter,
		SubmissionDate: row.SubmissionDate,
		SubmittedBy:    row.SubmittedBy,
		Active:         row.Active,
		PatientCount:   row.PatientCount,
	}
}

// LoadSnapshot materialises the calculation input for an audit year: the
// patients of every active submission, their visits, and the unit to
// network mapping. The returned snapshot is independent of the database
// and safe to share across calculations.
func (r *Repository) LoadSnapshot(ctx context.Context, year audit.Year) (*kpi.Snapshot, error) {
	var subs []submissionRow
	if err := r.db.WithContext(ctx).
		Where("audit_year = ? AND active = ?", year.StartYear, true).
		Find(&subs).Error; err != nil {
		return nil, err
	}

	snap := &kpi.Snapshot{Year: year, Networks: map[string]string{}}

	for _, sub := range subs {
		var patientRows []patientRow
		if err := r.db.WithContext(ctx).
			Where("submission_id = ?", sub.ID).
			Order("created_at, id").
			Find(&patientRows).Error; err != nil {
			return nil, err
		}

		for _, pr := range patientRows {
			patient := models.Patient{
				ID:                    pr.ID,
				NHSNumber:             pr.NHSNumber,
				UniqueReferenceNumber: pr.UniqueReferenceNumber,
				Sex:                   pr.Sex,
				DateOfBirth:           pr.DateOfBirth,
				Postcode:              pr.Postcode,
				Ethnicity:             pr.Ethnicity,
				IMDQuintile:           pr.IMDQuintile,
				DiabetesType:          pr.DiabetesType,
				DiagnosisDate:         pr.DiagnosisDate,
				DeathDate:             pr.DeathDate,
				DateLeavingService:    pr.DateLeavingService,
				GPPracticeODSCode:     pr.GPPracticeODSCode,
				PDUCode:               pr.PDUCode,
			}

			var visitRows []visitRow
			if err := r.db.WithContext(ctx).
				Where("patient_id = ?", pr.ID).
				Order("created_at, id").
				Find(&visitRows).Error; err != nil {
				return nil, err
			}
			for _, vr := range visitRows {
				var visit models.Visit
				if err := json.Unmarshal(vr.Observations, &visit); err != nil {
					return nil, fmt.Errorf("decode visit %s: %w", vr.ID, err)
				}
				visit.ID = vr.ID
				visit.PatientID = pr.ID
				snapVisitDate(&visit, vr.VisitDate)
				patient.Visits = append(patient.Visits, visit)
			}

			snap.Patients = append(snap.Patients, patient)
		}
	}

	var networks []networkRow
	if err := r.db.WithContext(ctx).Find(&networks).Error; err != nil {
		return nil, err
	}
	for _, n := range networks {
		snap.Networks[n.PDUCode] = n.NetworkCode
	}

	return snap, nil
}

func snapVisitDate(v *models.Visit, fromRow *time.Time) {
	if v.VisitDate == nil {
		v.VisitDate = fromRow
	}
}

// SetNetwork records or updates a unit's regional network.
func (r *Repository) SetNetwork(ctx context.Context, pduCode, networkCode string) error {
	row := networkRow{PDUCode: pduCode, NetworkCode: networkCode}
	return r.db.WithContext(ctx).Save(&row).Error
}
