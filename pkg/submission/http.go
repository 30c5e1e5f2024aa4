package submission

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/npda-audit/platform/pkg/audit"
	"github.com/npda-audit/platform/pkg/common/logger"
	"github.com/npda-audit/platform/pkg/common/models"
	"github.com/npda-audit/platform/pkg/kpi"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/submissions", h.handleSubmit).Methods(http.MethodPost)
	router.HandleFunc("/submissions/{year}", h.handleListSubmissions).Methods(http.MethodGet)
	router.HandleFunc("/submissions/{year}/{pdu}/active", h.handleActiveSubmission).Methods(http.MethodGet)
	router.HandleFunc("/calculations", h.handleCalculate).Methods(http.MethodPost)
	router.HandleFunc("/reports/{year}/{level}", h.handleReport).Methods(http.MethodGet)
	router.HandleFunc("/reports/{year}/{level}/{code}", h.handleReport).Methods(http.MethodGet)
	router.HandleFunc("/reports/{year}/{level}/{code}/kpis/{number}/drilldown", h.handleDrilldown).Methods(http.MethodGet)
	router.HandleFunc("/reports/{year}/{level}/{code}/hba1c-strata", h.handleHbA1cStrata).Methods(http.MethodGet)
	router.HandleFunc("/patients/{id}/kpis/{year}", h.handlePatientOutcomes).Methods(http.MethodGet)
}

type submitRequest struct {
	Submission models.Submission `json:"submission"`
	Patients   []models.Patient  `json:"patients"`
}

func (h *HTTPHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid submission payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Submission.PDUCode == "" {
		http.Error(w, "pdu_code is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Submit(r.Context(), &req.Submission, req.Patients); err != nil {
		h.writeError(w, err, "failed to store submission")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(req.Submission)
}

func (h *HTTPHandler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	subs, err := h.service.Submissions(r.Context(), year)
	if err != nil {
		h.writeError(w, err, "failed to list submissions")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(subs)
}

func (h *HTTPHandler) handleActiveSubmission(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	sub, err := h.service.ActiveSubmission(r.Context(), mux.Vars(r)["pdu"], year)
	if err != nil {
		h.writeError(w, err, "failed to fetch active submission")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *HTTPHandler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req models.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	scopeReport, drilldowns, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "calculation failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"report":     scopeReport,
		"drilldowns": drilldowns,
	})
}

func (h *HTTPHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	scope := models.Scope{Level: models.ScopeLevel(vars["level"]), Code: vars["code"]}

	assembled, err := h.service.Report(r.Context(), scope, year)
	if err != nil {
		h.writeError(w, err, "failed to build report")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assembled)
}

func (h *HTTPHandler) handleDrilldown(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	scope := models.Scope{Level: models.ScopeLevel(vars["level"]), Code: vars["code"]}

	drill, err := h.service.Drilldown(r.Context(), scope, year, vars["number"])
	if err != nil {
		h.writeError(w, err, "failed to build drilldown")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(drill)
}

func (h *HTTPHandler) handleHbA1cStrata(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	scope := models.Scope{Level: models.ScopeLevel(vars["level"]), Code: vars["code"]}

	strata, err := h.service.HbA1cStrata(r.Context(), scope, year)
	if err != nil {
		h.writeError(w, err, "failed to build hba1c strata")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(strata)
}

func (h *HTTPHandler) handlePatientOutcomes(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	outcomes, err := h.service.PatientOutcomes(r.Context(), year, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "failed to evaluate patient")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(outcomes)
}

func (h *HTTPHandler) yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		http.Error(w, "invalid audit year", http.StatusBadRequest)
		return 0, false
	}
	return year, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, kpi.ErrUnknownKPI),
		errors.Is(err, kpi.ErrUnknownScope),
		errors.Is(err, audit.ErrDateOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		logger.Log.WithError(err).Error(msg)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
