package kpi

import (
	"time"

	"github.com/npda-audit/platform/pkg/common/models"
)

// Most-recent-entry selection shared by every rule that reads "the latest
// recorded value". Policy: the entry with the latest observation date wins;
// an entry without its own observation date is dated by its visit; ties on
// observation date fall back to the later visit date; a full tie keeps the
// first-inserted entry.

func inRange(d *time.Time, start, end time.Time) bool {
	if d == nil {
		return false
	}
	return !d.Before(start) && !d.After(end)
}

// latestRecorded picks the winning visit among those where pick reports a
// recorded entry. pick may return an observation-specific date; when it is
// nil the visit date stands in for it.
func latestRecorded(visits []*models.Visit, pick func(v *models.Visit) (bool, *time.Time)) *models.Visit {
	var best *models.Visit
	var bestObs, bestVisit time.Time

	for _, v := range visits {
		present, obsDate := pick(v)
		if !present {
			continue
		}
		obs := effectiveDate(obsDate, v)
		visitDate := effectiveDate(nil, v)

		if best == nil || obs.After(bestObs) || (obs.Equal(bestObs) && visitDate.After(bestVisit)) {
			best = v
			bestObs = obs
			bestVisit = visitDate
		}
	}
	return best
}

func effectiveDate(obsDate *time.Time, v *models.Visit) time.Time {
	if obsDate != nil {
		return *obsDate
	}
	if v.VisitDate != nil {
		return *v.VisitDate
	}
	return time.Time{}
}

// latestCoded returns the most recent recorded value of a coded field that
// carries no observation date of its own.
func latestCoded(visits []*models.Visit, field func(*models.Visit) *int) *int {
	v := latestRecorded(visits, func(v *models.Visit) (bool, *time.Time) {
		return field(v) != nil, nil
	})
	if v == nil {
		return nil
	}
	return field(v)
}

func latestCodedIn(visits []*models.Visit, field func(*models.Visit) *int, allowed ...int) bool {
	val := latestCoded(visits, field)
	if val == nil {
		return false
	}
	for _, a := range allowed {
		if *val == a {
			return true
		}
	}
	return false
}

// anyVisit reports whether any visit satisfies the predicate.
func anyVisit(visits []*models.Visit, pred func(*models.Visit) bool) bool {
	for _, v := range visits {
		if pred(v) {
			return true
		}
	}
	return false
}

func countVisits(visits []*models.Visit, pred func(*models.Visit) bool) int {
	n := 0
	for _, v := range visits {
		if pred(v) {
			n++
		}
	}
	return n
}
