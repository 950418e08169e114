package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/allocation-engine/engine"
	"github.com/warp/allocation-engine/engine/store"
)

// newTestServer wires a handler against the in-memory store with a fixed
// "today" of 02-Dec-2025.
func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()
	h := NewHandler(store.NewMemory(), nil)
	h.now = func() engine.DayDate { return engine.NewDayDate(2025, time.December, 2) }
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, h
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	return resp
}

const snapshotJSON = `[
  {
    "kind": "Planned", "id": 10, "orderItemId": 5, "orderItemKey": "OI-1",
    "employeeId": 7, "employeeName": "Asha", "projectName": "Plant Audit",
    "activityName": "Stock Count", "activityId": 100,
    "startDate": "01-Dec-2025", "endDate": "05-Dec-2025",
    "effort": 5, "effortUnit": "days"
  },
  {
    "kind": "Actual", "id": 20, "backReference": 10, "orderItemId": 5,
    "orderItemKey": "OI-1", "employeeId": 7, "employeeName": "Asha",
    "projectName": "Plant Audit", "activityName": "Stock Count",
    "activityId": 100, "startDate": "01-Dec-2025", "endDate": "05-Dec-2025",
    "effort": 1,
    "timeSegments": [
      {"date": "02-Dec-2025", "encodedEvent": "I|09:00|12.9|77.5", "itemsCount": 4}
    ]
  }
]`

func TestReconcileEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/allocations/reconcile", snapshotJSON)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ReconcileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	require.Len(t, out.Activities, 1)
	a := out.Activities[0]
	assert.Equal(t, "InProgress", a.PeriodStatus)
	assert.Equal(t, "Active", a.TodayStatus)
	assert.True(t, a.ShowEndButton)
	assert.False(t, a.HasPendingCheckout)
	assert.Equal(t, "01-Dec-2025", a.PlannedStart)
	assert.Equal(t, "05-Dec-2025", a.PlannedEnd)
	require.Len(t, a.DayLogs, 1)
	assert.Equal(t, "02-Dec-2025", a.DayLogs[0].Date)
	require.NotNil(t, a.DayLogs[0].FirstCheckIn)
	assert.Equal(t, "09:00", a.DayLogs[0].FirstCheckIn.Time)
	assert.Equal(t, 4, a.DayLogs[0].ItemsCount)

	require.Len(t, out.Projects, 1)
	assert.Equal(t, 1, out.Projects[0].WorkingCount)
	require.Len(t, out.Employees, 1)
	assert.Equal(t, "Asha", out.Employees[0].EmployeeName)
}

func TestIngestThenListActivities(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/allocations", snapshotJSON)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ingest IngestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ingest))
	assert.Equal(t, 2, ingest.Stored)
	assert.Empty(t, ingest.Diagnostics)

	listResp, err := http.Get(srv.URL + "/api/activities")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var activities []ActivityDTO
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&activities))
	require.Len(t, activities, 1)
	assert.Equal(t, "InProgress", activities[0].PeriodStatus)
}

func TestIngest_NonNumericIDBecomesDiagnostic(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `[
	  {"kind": "Planned", "id": "abc", "orderItemId": 5, "employeeId": 7, "effort": 1},
	  {"kind": "Planned", "id": 11, "orderItemId": 5, "employeeId": 7,
	   "startDate": "01-Dec-2025", "endDate": "05-Dec-2025", "effort": 1}
	]`
	resp := postJSON(t, srv.URL+"/api/allocations", body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ingest IngestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ingest))
	assert.Equal(t, 1, ingest.Stored)
	require.Len(t, ingest.Diagnostics, 1)
	assert.Equal(t, "id", ingest.Diagnostics[0].Field)
}

func TestIngest_BadBodyIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/allocations", "{not json")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboardEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/allocations", snapshotJSON)
	resp.Body.Close()

	projResp, err := http.Get(srv.URL + "/api/dashboard/projects")
	require.NoError(t, err)
	defer projResp.Body.Close()
	var projects []ProjectRollupDTO
	require.NoError(t, json.NewDecoder(projResp.Body).Decode(&projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "Plant Audit", projects[0].ProjectName)

	empResp, err := http.Get(srv.URL + "/api/dashboard/employees")
	require.NoError(t, err)
	defer empResp.Body.Close()
	var employees []EmployeeRollupDTO
	require.NoError(t, json.NewDecoder(empResp.Body).Decode(&employees))
	require.Len(t, employees, 1)
	require.Len(t, employees[0].Projects, 1)
}

func TestExportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/allocations", snapshotJSON)
	resp.Body.Close()

	exportResp, err := http.Get(srv.URL + "/api/dashboard/export")
	require.NoError(t, err)
	defer exportResp.Body.Close()
	assert.Equal(t, http.StatusOK, exportResp.StatusCode)
	assert.Contains(t, exportResp.Header.Get("Content-Type"), "spreadsheetml")
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
