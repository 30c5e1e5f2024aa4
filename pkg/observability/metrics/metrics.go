package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	calculationsTotal     atomic.Int64
	calculationLastMillis atomic.Int64
	snapshotPatientsLast  atomic.Int64
	reportCacheHits       atomic.Int64
	reportCacheMisses     atomic.Int64
	submissionsStored     atomic.Int64
)

func Init() {}

func ObserveCalculation(patients int, durationMillis int64) {
	calculationsTotal.Add(1)
	calculationLastMillis.Store(durationMillis)
	snapshotPatientsLast.Store(int64(patients))
}

func ObserveReportCacheHit() { reportCacheHits.Add(1) }

func ObserveReportCacheMiss() { reportCacheMisses.Add(1) }

func ObserveSubmissionStored() { submissionsStored.Add(1) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP npda_kpi_calculations_total Number of KPI calculations completed since start.\n")
	fmt.Fprintf(w, "# TYPE npda_kpi_calculations_total counter\n")
	fmt.Fprintf(w, "npda_kpi_calculations_total %d\n", calculationsTotal.Load())

	fmt.Fprintf(w, "# HELP npda_kpi_calculation_last_duration_ms Duration of the most recent KPI calculation.\n")
	fmt.Fprintf(w, "# TYPE npda_kpi_calculation_last_duration_ms gauge\n")
	fmt.Fprintf(w, "npda_kpi_calculation_last_duration_ms %d\n", calculationLastMillis.Load())

	fmt.Fprintf(w, "# HELP npda_kpi_snapshot_patients Number of patients in the most recent calculation snapshot.\n")
	fmt.Fprintf(w, "# TYPE npda_kpi_snapshot_patients gauge\n")
	fmt.Fprintf(w, "npda_kpi_snapshot_patients %d\n", snapshotPatientsLast.Load())

	fmt.Fprintf(w, "# HELP npda_report_cache_hits_total Number of report reads served from cache.\n")
	fmt.Fprintf(w, "# TYPE npda_report_cache_hits_total counter\n")
	fmt.Fprintf(w, "npda_report_cache_hits_total %d\n", reportCacheHits.Load())

	fmt.Fprintf(w, "# HELP npda_report_cache_misses_total Number of report reads that required recomputation.\n")
	fmt.Fprintf(w, "# TYPE npda_report_cache_misses_total counter\n")
	fmt.Fprintf(w, "npda_report_cache_misses_total %d\n", reportCacheMisses.Load())

	fmt.Fprintf(w, "# HELP npda_submissions_stored_total Number of cohort submissions stored since start.\n")
	fmt.Fprintf(w, "# TYPE npda_submissions_stored_total counter\n")
	fmt.Fprintf(w, "npda_submissions_stored_total %d\n", submissionsStored.Load())
}
