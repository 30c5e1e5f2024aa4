package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/npda-audit/platform/pkg/audit"
	"github.com/npda-audit/platform/pkg/common/kafka"
	"github.com/npda-audit/platform/pkg/common/logger"
	"github.com/npda-audit/platform/pkg/common/models"
	"github.com/npda-audit/platform/pkg/kpi"
	"github.com/npda-audit/platform/pkg/observability/metrics"
	"github.com/npda-audit/platform/pkg/report"
)

// SnapshotLoader supplies the immutable patient set for an audit year.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, year audit.Year) (*kpi.Snapshot, error)
}

// SubmissionStore is the persistence surface the service needs beyond
// snapshot loading.
type SubmissionStore interface {
	SnapshotLoader
	Create(ctx context.Context, sub *models.Submission, patients []models.Patient) error
	Active(ctx context.Context, pduCode string, auditYear int) (*models.Submission, error)
	List(ctx context.Context, auditYear int) ([]models.Submission, error)
}

type eventPublisher interface {
	PublishEvent(ctx context.Context, topic string, eventType string, source string, data map[string]interface{}) error
}

// Service ties together submissions, the KPI engine, report assembly,
// caching and the event bus. Cache and producer are optional; a nil value
// disables that concern.
type Service struct {
	store     SubmissionStore
	calc      *kpi.Calculator
	assembler *report.Assembler
	cache     *ReportCache
	producer  eventPublisher
}

func NewService(store SubmissionStore, calc *kpi.Calculator, assembler *report.Assembler, cache *ReportCache, producer *kafka.Producer) *Service {
	s := &Service{
		store:     store,
		calc:      calc,
		assembler: assembler,
		cache:     cache,
	}
	if producer != nil {
		s.producer = producer
	}
	return s
}

// Submit stores a new cohort upload, making it the active submission for
// its unit and year, then announces it so cached reports are rebuilt.
func (s *Service) Submit(ctx context.Context, sub *models.Submission, patients []models.Patient) error {
	if _, err := audit.YearStarting(sub.AuditYear); err != nil {
		return err
	}
	if err := s.store.Create(ctx, sub, patients); err != nil {
		return err
	}
	metrics.ObserveSubmissionStored()

	if s.cache != nil {
		s.cache.InvalidateYear(ctx, sub.AuditYear)
	}
	if s.producer != nil {
		if err := s.producer.PublishEvent(ctx, kafka.TopicSubmissionFinalized, kafka.EventSubmissionFinalized, "kpi-service", map[string]interface{}{
			"submission_id": sub.ID,
			"pdu_code":      sub.PDUCode,
			"audit_year":    sub.AuditYear,
		}); err != nil {
			logger.Log.WithError(err).Warn("submission event publish failed")
		}
	}
	return nil
}

// Calculate runs the full measure registry for a scope and returns the
// raw results.
func (s *Service) Calculate(ctx context.Context, req models.CalculateRequest) (*models.ScopeReport, []models.KPIDrilldown, error) {
	snap, err := s.snapshot(ctx, req.AuditYear)
	if err != nil {
		return nil, nil, err
	}
	return s.calc.Calculate(ctx, snap, req.Scope)
}

// Report returns the assembled display report for a scope, from cache
// when warm.
func (s *Service) Report(ctx context.Context, scope models.Scope, auditYear int) (*models.Report, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, auditYear, scope); ok {
			metrics.ObserveReportCacheHit()
			return cached, nil
		}
		metrics.ObserveReportCacheMiss()
	}

	snap, err := s.snapshot(ctx, auditYear)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	scopeReport, _, err := s.calc.Calculate(ctx, snap, scope)
	if err != nil {
		return nil, err
	}
	metrics.ObserveCalculation(len(snap.Patients), time.Since(started).Milliseconds())
	assembled := s.assembler.Assemble(scopeReport)

	if s.cache != nil {
		s.cache.Set(ctx, assembled)
	}
	if s.producer != nil {
		if err := s.producer.PublishEvent(ctx, kafka.TopicKPIsCalculated, kafka.EventKPIsCalculated, "kpi-service", map[string]interface{}{
			"scope_level": string(scope.Level),
			"scope_code":  scope.Code,
			"audit_year":  auditYear,
		}); err != nil {
			logger.Log.WithError(err).Warn("calculation event publish failed")
		}
	}
	return assembled, nil
}

// Drilldown returns the patient buckets behind one measure at one scope.
func (s *Service) Drilldown(ctx context.Context, scope models.Scope, auditYear int, number string) (models.KPIDrilldown, error) {
	snap, err := s.snapshot(ctx, auditYear)
	if err != nil {
		return models.KPIDrilldown{}, err
	}
	_, drill, err := s.calc.CalculateKPI(ctx, snap, scope, number)
	return drill, err
}

// HbA1cStrata returns mean and median HbA1c split by diabetes type.
func (s *Service) HbA1cStrata(ctx context.Context, scope models.Scope, auditYear int) ([]kpi.HbA1cStratum, error) {
	snap, err := s.snapshot(ctx, auditYear)
	if err != nil {
		return nil, err
	}
	return kpi.HbA1cByDiabetesType(snap, scope)
}

// PatientOutcomes returns the per-measure view for a single patient.
func (s *Service) PatientOutcomes(ctx context.Context, auditYear int, patientID string) ([]kpi.PatientKPIOutcome, error) {
	snap, err := s.snapshot(ctx, auditYear)
	if err != nil {
		return nil, err
	}
	return kpi.PatientOutcomes(snap, patientID)
}

// ActiveSubmission and Submissions expose the submission ledger.
func (s *Service) ActiveSubmission(ctx context.Context, pduCode string, auditYear int) (*models.Submission, error) {
	return s.store.Active(ctx, pduCode, auditYear)
}

func (s *Service) Submissions(ctx context.Context, auditYear int) ([]models.Submission, error) {
	return s.store.List(ctx, auditYear)
}

// HandleEvent is the Kafka consumer hook: a finalized submission
// elsewhere invalidates this instance's cached reports for the year.
func (s *Service) HandleEvent(ctx context.Context, event models.Event) error {
	if event.Type != kafka.EventSubmissionFinalized {
		return nil
	}
	year, ok := event.Data["audit_year"].(float64)
	if !ok {
		return fmt.Errorf("submission event %s has no audit_year", event.ID)
	}
	if s.cache != nil {
		s.cache.InvalidateYear(ctx, int(year))
	}
	return nil
}

func (s *Service) snapshot(ctx context.Context, auditYear int) (*kpi.Snapshot, error) {
	year, err := audit.YearStarting(auditYear)
	if err != nil {
		return nil, err
	}
	return s.store.LoadSnapshot(ctx, year)
}
