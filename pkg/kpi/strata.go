package kpi

import (
	"github.com/npda-audit/platform/pkg/common/models"
)

// HbA1cStratum is the HbA1c distribution for one diabetes type within a
// scope: the base-cohort patients of that type and the mean and median of
// their most recent valid readings.
type HbA1cStratum struct {
	DiabetesType int      `json:"diabetes_type"`
	Patients     int      `json:"patients"`
	Mean         *float64 `json:"mean,omitempty"`
	Median       *float64 `json:"median,omitempty"`
}

// HbA1cByDiabetesType computes mean and median HbA1c separately for
// Type 1 and Type 2 patients in the scope, one reading per patient. Mean
// and median are nil when no patient of that type has a valid reading.
func HbA1cByDiabetesType(snap *Snapshot, scope models.Scope) ([]HbA1cStratum, error) {
	patients, err := scopePatients(snap, scope)
	if err != nil {
		return nil, err
	}

	strata := []HbA1cStratum{
		{DiabetesType: diabetesType1},
		{DiabetesType: diabetesType2},
	}
	values := make(map[int][]float64)

	for _, p := range patients {
		e := newPatientEval(p, snap.Year)
		if !e.base || p.DiabetesType == nil {
			continue
		}
		for i := range strata {
			if strata[i].DiabetesType != *p.DiabetesType {
				continue
			}
			strata[i].Patients++
			if v := e.latestValidHbA1c(); v != nil {
				values[strata[i].DiabetesType] = append(values[strata[i].DiabetesType], *v)
			}
		}
	}

	for i := range strata {
		vs := values[strata[i].DiabetesType]
		strata[i].Mean = mean(vs)
		strata[i].Median = median(vs)
	}
	return strata, nil
}
