/*
handlers.go - HTTP handlers for the allocation reconciliation service

PURPOSE:
  Exposes the reconciliation engine over REST. Handlers parse wire
  payloads, fix "today" once per request, run the engine, and serialize
  the derived views. The engine itself stays pure; all I/O lives here.

ENDPOINTS:
  POST /api/allocations            Ingest a raw snapshot (replaces prior)
  POST /api/allocations/reconcile  Stateless: records in, views out
  GET  /api/activities             Normalized activities from the snapshot
  GET  /api/dashboard/projects     Project rollups
  GET  /api/dashboard/employees    Employee rollups
  GET  /api/dashboard/export       XLSX of both rollups
  GET  /api/health

ERROR HANDLING:
  - 400: undecodable payload
  - 500: store or export failures
  Skipped records are NOT errors: they come back as diagnostics alongside
  the derived views.

SEE ALSO:
  - dto.go: wire shapes
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/warp/allocation-engine/engine"
	"github.com/warp/allocation-engine/report"
)

// Handler holds the API's dependencies.
type Handler struct {
	store  engine.RecordStore
	logger *zap.Logger

	// now returns the engine's fixed "today"; overridable in tests.
	now func() engine.DayDate
}

// NewHandler creates a handler backed by the given snapshot store.
func NewHandler(store engine.RecordStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger, now: engine.Today}
}

// =============================================================================
// INGEST
// =============================================================================

// IngestAllocations replaces the stored snapshot with the request body.
func (h *Handler) IngestAllocations(w http.ResponseWriter, r *http.Request) {
	var dtos []RawRecordDTO
	if err := decodeBody(r, &dtos); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	records, diagnostics := decodeRecords(dtos)
	if err := h.store.Replace(r.Context(), records); err != nil {
		h.logger.Error("snapshot replace failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store snapshot", err)
		return
	}

	h.logger.Info("snapshot ingested",
		zap.Int("stored", len(records)),
		zap.Int("skipped", len(diagnostics)))
	writeJSON(w, http.StatusOK, IngestResponse{Stored: len(records), Diagnostics: diagnostics})
}

// =============================================================================
// RECONCILE (stateless)
// =============================================================================

// Reconcile runs the full engine over the request body without touching
// the store.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var dtos []RawRecordDTO
	if err := decodeBody(r, &dtos); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	records, diagnostics := decodeRecords(dtos)
	writeJSON(w, http.StatusOK, h.buildViews(records, diagnostics))
}

// =============================================================================
// SNAPSHOT-BACKED VIEWS
// =============================================================================

// ListActivities reconciles the stored snapshot into normalized activities.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	records, err := h.loadRecords(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load snapshot", err)
		return
	}

	result := engine.NewReconciler(h.now()).Reconcile(records)

	dtos := make([]ActivityDTO, 0, len(result.Activities))
	for _, a := range result.Activities {
		dtos = append(dtos, toActivityDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ProjectDashboard returns the project rollups for the stored snapshot.
func (h *Handler) ProjectDashboard(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load snapshot", err)
		return
	}

	projects, _, _ := engine.Aggregate(records)
	dtos := make([]ProjectRollupDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, toProjectRollupDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// EmployeeDashboard returns the employee rollups for the stored snapshot.
func (h *Handler) EmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load snapshot", err)
		return
	}

	_, employees, _ := engine.Aggregate(records)
	dtos := make([]EmployeeRollupDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeRollupDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExportDashboard streams both rollups as an XLSX workbook.
func (h *Handler) ExportDashboard(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load snapshot", err)
		return
	}

	projects, employees, _ := engine.Aggregate(records)

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="allocations.xlsx"`)
	if err := report.WriteWorkbook(w, projects, employees); err != nil {
		h.logger.Error("dashboard export failed", zap.Error(err))
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadRecords(r *http.Request) ([]*engine.RawAllocationRecord, error) {
	if raw := r.URL.Query().Get("employee_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return h.store.LoadByEmployee(r.Context(), id)
		}
	}
	return h.store.LoadAll(r.Context())
}

func (h *Handler) buildViews(records []*engine.RawAllocationRecord, diagnostics []DiagnosticDTO) ReconcileResponse {
	result := engine.NewReconciler(h.now()).Reconcile(records)
	projects, employees, _ := engine.Aggregate(records)

	resp := ReconcileResponse{
		Activities:  make([]ActivityDTO, 0, len(result.Activities)),
		Projects:    make([]ProjectRollupDTO, 0, len(projects)),
		Employees:   make([]EmployeeRollupDTO, 0, len(employees)),
		Diagnostics: diagnostics,
	}
	for _, d := range result.Diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, toDiagnosticDTO(d))
	}
	for _, a := range result.Activities {
		resp.Activities = append(resp.Activities, toActivityDTO(a))
	}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, toProjectRollupDTO(p))
	}
	for _, e := range employees {
		resp.Employees = append(resp.Employees, toEmployeeRollupDTO(e))
	}
	return resp
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
