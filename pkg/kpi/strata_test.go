package kpi

import (
	"testing"
	"time"

	"github.com/npda-audit/platform/pkg/common/models"
)

func TestHbA1cStratifiedByDiabetesType(t *testing.T) {
	p1 := type1Patient("p1", "PZ001")
	p1.Visits[0].HbA1c = pFloat(55)
	p1.Visits[0].HbA1cDate = pDate(date(2025, time.June, 1))

	p2 := type1Patient("p2", "PZ002")
	p2.DiabetesType = pInt(2)
	p2.Visits[0].HbA1c = pFloat(70)
	p2.Visits[0].HbA1cDate = pDate(date(2025, time.June, 1))

	p3 := type1Patient("p3", "PZ002") // Type 1, no reading

	strata, err := HbA1cByDiabetesType(snapshotOf(t, p1, p2, p3), national())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(strata) != 2 {
		t.Fatalf("expected a stratum per diabetes type, got %d", len(strata))
	}

	t1 := strata[0]
	if t1.DiabetesType != 1 || t1.Patients != 2 {
		t.Fatalf("expected 2 Type 1 patients, got %+v", t1)
	}
	if t1.Mean == nil || *t1.Mean != 55 {
		t.Fatalf("expected Type 1 mean 55 from the single reading, got %v", t1.Mean)
	}

	t2 := strata[1]
	if t2.DiabetesType != 2 || t2.Patients != 1 {
		t.Fatalf("expected 1 Type 2 patient, got %+v", t2)
	}
	if t2.Median == nil || *t2.Median != 70 {
		t.Fatalf("expected Type 2 median 70, got %v", t2.Median)
	}
}

func TestHbA1cStrataEmptyScope(t *testing.T) {
	p := type1Patient("p1", "PZ001")
	strata, err := HbA1cByDiabetesType(snapshotOf(t, p),
		models.Scope{Level: models.ScopePDU, Code: "PZ999"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range strata {
		if s.Patients != 0 || s.Mean != nil || s.Median != nil {
			t.Fatalf("empty scope should yield empty strata, got %+v", s)
		}
	}
}
