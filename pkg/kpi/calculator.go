package kpi

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/npda-audit/platform/pkg/common/logger"
	"github.com/npda-audit/platform/pkg/common/models"
)

// Calculator evaluates the measure registry against a snapshot. It holds
// no per-run state: the same snapshot and scope always produce the same
// report.
type Calculator struct {
	workers chan struct{}
}

func NewCalculator(workers int) *Calculator {
	if workers <= 0 {
		workers = 4
	}
	return &Calculator{workers: make(chan struct{}, workers)}
}

// scopePatients resolves a scope to the patients it covers. Scope order
// follows snapshot order so bucket contents are deterministic.
func scopePatients(snap *Snapshot, scope models.Scope) ([]*models.Patient, error) {
	var out []*models.Patient
	for i := range snap.Patients {
		p := &snap.Patients[i]
		switch scope.Level {
		case models.ScopeNational:
			out = append(out, p)
		case models.ScopePDU:
			if p.PDUCode == scope.Code {
				out = append(out, p)
			}
		case models.ScopeNetwork:
			if snap.Networks[p.PDUCode] == scope.Code {
				out = append(out, p)
			}
		default:
			return nil, fmt.Errorf("scope level %q: %w", scope.Level, ErrUnknownScope)
		}
	}
	return out, nil
}

// Calculate runs every registered measure for the scope and returns the
// report alongside the per-measure patient buckets.
func (c *Calculator) Calculate(ctx context.Context, snap *Snapshot, scope models.Scope) (*models.ScopeReport, []models.KPIDrilldown, error) {
	started := time.Now()

	patients, err := scopePatients(snap, scope)
	if err != nil {
		return nil, nil, err
	}

	outcomes, err := c.evaluateAll(ctx, patients, snap)
	if err != nil {
		return nil, nil, err
	}

	results := make([]models.KPIResult, 0, len(registry))
	drilldowns := make([]models.KPIDrilldown, 0, len(registry))
	for i, def := range registry {
		result, drill := aggregate(def, patients, outcomes, i)
		results = append(results, result)
		drilldowns = append(drilldowns, drill)
	}

	logger.Log.WithFields(map[string]interface{}{
		"scope_level": scope.Level,
		"scope_code":  scope.Code,
		"audit_year":  snap.Year.StartYear,
		"patients":    len(patients),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("KPI calculation complete")

	return &models.ScopeReport{
		Scope:        scope,
		AuditYear:    snap.Year.StartYear,
		PatientCount: len(patients),
		Results:      results,
		CalculatedAt: time.Now().UTC(),
	}, drilldowns, nil
}

// CalculateKPI runs a single measure for the scope.
func (c *Calculator) CalculateKPI(ctx context.Context, snap *Snapshot, scope models.Scope, number string) (models.KPIResult, models.KPIDrilldown, error) {
	def, err := DefinitionByNumber(number)
	if err != nil {
		return models.KPIResult{}, models.KPIDrilldown{}, err
	}
	patients, err := scopePatients(snap, scope)
	if err != nil {
		return models.KPIResult{}, models.KPIDrilldown{}, err
	}
	outcomes, err := c.evaluateAll(ctx, patients, snap)
	if err != nil {
		return models.KPIResult{}, models.KPIDrilldown{}, err
	}
	idx := registryByNum[def.Number]
	result, drill := aggregate(def, patients, outcomes, idx)
	return result, drill, nil
}

// PatientOutcomes evaluates every measure for one patient, for the
// individual drill-down view.
func PatientOutcomes(snap *Snapshot, patientID string) ([]PatientKPIOutcome, error) {
	for i := range snap.Patients {
		if snap.Patients[i].ID != patientID {
			continue
		}
		e := newPatientEval(&snap.Patients[i], snap.Year)
		out := make([]PatientKPIOutcome, 0, len(registry))
		for _, def := range registry {
			o := def.evaluate(e)
			out = append(out, PatientKPIOutcome{
				Number:  def.Number,
				Key:     def.Key,
				Label:   def.Label,
				Outcome: describeOutcome(def.Kind, o),
			})
		}
		return out, nil
	}
	return nil, fmt.Errorf("patient %s not found in snapshot", patientID)
}

func describeOutcome(kind Kind, o outcome) string {
	if !o.eligible {
		return "ineligible"
	}
	switch kind {
	case KindBinary:
		if o.passed {
			return "passed"
		}
		return "failed"
	case KindCompletion:
		if o.achieved == o.expected {
			return "passed"
		}
		return "failed"
	default:
		return "eligible"
	}
}

// evaluateAll computes every patient's outcome vector. Patients are
// independent, so they are fanned out over the bounded worker pool and the
// results land in a preallocated slice keyed by index.
func (c *Calculator) evaluateAll(ctx context.Context, patients []*models.Patient, snap *Snapshot) ([][]outcome, error) {
	outcomes := make([][]outcome, len(patients))

	var wg sync.WaitGroup
	for i := range patients {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wg.Add(1)
		c.workers <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-c.workers }()

			e := newPatientEval(patients[i], snap.Year)
			vec := make([]outcome, len(registry))
			for j := range registry {
				vec[j] = registry[j].evaluate(e)
			}
			outcomes[i] = vec
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// aggregate folds per-patient outcomes for one measure into scope totals.
// Totals always come from the raw patient set, never from smaller scopes,
// so national figures are exact rather than sums of rounded rates.
func aggregate(def Definition, patients []*models.Patient, outcomes [][]outcome, idx int) (models.KPIResult, models.KPIDrilldown) {
	result := models.KPIResult{
		Number:   def.Number,
		Key:      def.Key,
		Label:    def.Label,
		Category: def.Category,
		Kind:     string(def.Kind),
	}
	drill := models.KPIDrilldown{Number: def.Number}

	var values []float64
	expectedTotal, achievedTotal := 0, 0

	for i, p := range patients {
		o := outcomes[i][idx]
		if !o.eligible {
			result.TotalIneligible++
			drill.Ineligible = append(drill.Ineligible, p.ID)
			continue
		}
		result.TotalEligible++
		drill.Eligible = append(drill.Eligible, p.ID)

		switch def.Kind {
		case KindBinary:
			if o.passed {
				drill.Passed = append(drill.Passed, p.ID)
			} else {
				drill.Failed = append(drill.Failed, p.ID)
			}
		case KindCompletion:
			expectedTotal += o.expected
			achievedTotal += o.achieved
			if o.achieved == o.expected {
				drill.Passed = append(drill.Passed, p.ID)
			} else {
				drill.Failed = append(drill.Failed, p.ID)
			}
		case KindStatistic:
			if o.value != nil {
				values = append(values, *o.value)
			}
		}
	}

	switch def.Kind {
	case KindBinary:
		passed := len(drill.Passed)
		failed := len(drill.Failed)
		result.TotalPassed = &passed
		result.TotalFailed = &failed
		result.PassRate = passRate(passed, result.TotalEligible)
	case KindCompletion:
		missed := expectedTotal - achievedTotal
		result.TotalEligible = expectedTotal
		result.TotalPassed = &achievedTotal
		result.TotalFailed = &missed
		result.PassRate = passRate(achievedTotal, expectedTotal)
	case KindStatistic:
		switch def.agg {
		case aggMean:
			result.Statistic = mean(values)
		case aggMedian:
			result.Statistic = median(values)
		case aggSum:
			result.Statistic = sum(values)
		}
	}

	return result, drill
}

// passRate is nil when there is nothing to rate; percentages are exact
// here and rounded down only at display time.
func passRate(passed, eligible int) *float64 {
	if eligible <= 0 {
		return nil
	}
	rate := float64(passed) / float64(eligible) * 100
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil
	}
	return &rate
}
