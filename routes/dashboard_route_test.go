package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hrpulse/dashboard"
	"hrpulse/database"
	"hrpulse/handlers"
	"hrpulse/models"
	"hrpulse/notify"
	"hrpulse/reports"
	repository "hrpulse/repositories"
	service "hrpulse/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type envelope struct {
	StatusCode int               `json:"status_code"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	Data       json.RawMessage   `json:"data"`
	Errors     map[string]string `json:"errors"`
}

type testServer struct {
	*httptest.Server
	repo *repository.FixtureRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	repo := repository.NewFixtureRepository(0, nil, logger)
	bus := notify.NewBus(logger)
	now := func() time.Time { return time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC) }

	registry := dashboard.NewRegistry(dashboard.Deps{
		Repo:      repo,
		Publisher: bus,
		Now:       now,
		Logger:    logger,
	}, time.Hour, bus.CloseTopic)
	dashboardService := service.NewDashboardService(repo, registry, logger)
	reportService := service.NewReportService(reports.NewGenerator(repo, now, logger), bus, logger)

	srv := httptest.NewServer(SetupRoutes(
		handlers.NewDashboardHandler(dashboardService, bus),
		handlers.NewReportHandler(reportService),
		logger,
	))
	t.Cleanup(func() {
		dashboardService.Shutdown()
		srv.Close()
	})
	return &testServer{Server: srv, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (s *testServer) createView(t *testing.T, body string) models.ViewSnapshot {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/views", body)
	require.Equal(t, http.StatusCreated, status, env.Message)
	var view models.ViewSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}

type sectionBody struct {
	Name             string            `json:"name"`
	State            string            `json:"state"`
	Loading          bool              `json:"loading"`
	Error            string            `json:"error"`
	CanRetry         bool              `json:"can_retry"`
	Filters          map[string]string `json:"filters"`
	FiltersAtDefault bool              `json:"filters_at_default"`
	Data             []json.RawMessage `json:"data"`
	Summary          map[string]any    `json:"summary"`
}

func (s *testServer) section(t *testing.T, viewID, name string) sectionBody {
	t.Helper()
	status, env := s.do(t, http.MethodGet, "/api/views/"+viewID+"/sections/"+name+"?wait=true", "")
	require.Equal(t, http.StatusOK, status, env.Message)
	var body sectionBody
	require.NoError(t, json.Unmarshal(env.Data, &body))
	return body
}

func TestHealthAndCollections(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", env.Message)

	status, env = srv.do(t, http.MethodGet, "/api/collections/"+database.CollectionHeatmap, "")
	assert.Equal(t, http.StatusOK, status)
	var rows []models.DepartmentHeatmapRow
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 6)

	status, env = srv.do(t, http.MethodGet, "/api/collections/salaries", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestListPages(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodGet, "/api/pages", "")
	require.Equal(t, http.StatusOK, status)
	var pages []models.PageSummary
	require.NoError(t, json.Unmarshal(env.Data, &pages))

	require.Len(t, pages, 4)
	assert.Equal(t, dashboard.PageEngagement, pages[0].Name)
	assert.Equal(t, []string{dashboard.SectionMetrics, dashboard.SectionTrends, dashboard.SectionHeatmap, dashboard.SectionAlerts}, pages[0].Sections)
	assert.Equal(t, dashboard.PageReports, pages[3].Name)
}

func TestCreateViewValidation(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodPost, "/api/views", `{"page":"payroll"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]string{"Page": "oneof"}, env.Errors)

	status, env = srv.do(t, http.MethodPost, "/api/views", `{"page":"journey","employee_id":"emp-404"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestSectionFilterFlow(t *testing.T) {
	srv := newTestServer(t)
	view := srv.createView(t, `{"page":"engagement"}`)
	require.Len(t, view.Sections, 4)

	heatmap := srv.section(t, view.ID, dashboard.SectionHeatmap)
	assert.Equal(t, "success", heatmap.State)
	assert.Len(t, heatmap.Data, 6)
	assert.True(t, heatmap.FiltersAtDefault)

	status, env := srv.do(t, http.MethodPut, "/api/views/"+view.ID+"/sections/heatmap/filters", `{"filters":{"department":"dept-ops"}}`)
	require.Equal(t, http.StatusOK, status, env.Message)

	filtered := srv.section(t, view.ID, dashboard.SectionHeatmap)
	require.Len(t, filtered.Data, 1)
	assert.Equal(t, "dept-ops", filtered.Filters["department"])
	assert.Equal(t, "Operations", filtered.Summary["lowest"])

	status, env = srv.do(t, http.MethodPut, "/api/views/"+view.ID+"/sections/heatmap/filters", `{"filters":{"department":"dept-moon"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", env.Code)

	status, env = srv.do(t, http.MethodDelete, "/api/views/"+view.ID+"/sections/heatmap/filters", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Filters reset successfully", env.Message)

	status, env = srv.do(t, http.MethodDelete, "/api/views/"+view.ID+"/sections/heatmap/filters", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Filters already at defaults", env.Message)

	status, env = srv.do(t, http.MethodGet, "/api/views/"+view.ID+"/sections/timeline", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, `section "timeline" on page "engagement" not found`, env.Message)

	status, env = srv.do(t, http.MethodGet, "/api/views/"+view.ID+"/sections/payroll", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, `section "payroll" not found`, env.Message)
}

func TestRetryAfterBackendFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.repo.SetFailing(database.CollectionCases, true)
	view := srv.createView(t, `{"page":"retention"}`)

	failed := srv.section(t, view.ID, dashboard.SectionCases)
	assert.Equal(t, "error", failed.State)
	assert.True(t, failed.CanRetry)
	assert.Equal(t, "Could not load the retention cases.", failed.Error)
	assert.Empty(t, failed.Data)

	library := srv.section(t, view.ID, dashboard.SectionLibrary)
	assert.Equal(t, "success", library.State)

	srv.repo.SetFailing(database.CollectionCases, false)
	status, _ := srv.do(t, http.MethodPost, "/api/views/"+view.ID+"/sections/cases/retry", "")
	assert.Equal(t, http.StatusAccepted, status)

	recovered := srv.section(t, view.ID, dashboard.SectionCases)
	assert.Equal(t, "success", recovered.State)
	assert.Len(t, recovered.Data, 5)
	assert.Empty(t, recovered.Error)
}

func TestSelectEmployeeAndClose(t *testing.T) {
	srv := newTestServer(t)
	view := srv.createView(t, `{"page":"journey","employee_id":"emp-001"}`)

	status, env := srv.do(t, http.MethodPut, "/api/views/"+view.ID+"/employee", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "required", env.Errors["EmployeeID"])

	status, _ = srv.do(t, http.MethodPut, "/api/views/"+view.ID+"/employee", `{"employee_id":"emp-002"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, srv.section(t, view.ID, dashboard.SectionFrictions).Data, 2)

	status, _ = srv.do(t, http.MethodDelete, "/api/views/"+view.ID, "")
	assert.Equal(t, http.StatusOK, status)

	status, env = srv.do(t, http.MethodGet, "/api/views/"+view.ID, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestReportDownloadPushesToast(t *testing.T) {
	srv := newTestServer(t)
	view := srv.createView(t, `{"page":"reports"}`)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/views/" + view.ID + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	// Let the subscription register before the toast is published.
	time.Sleep(50 * time.Millisecond)

	resp, err := srv.Client().Get(srv.URL + "/api/reports/engagement/download?view_id=" + view.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, reports.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "engagement-report-2024-06-30.xlsx")

	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Heatmap")

	var toast notify.Notification
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&toast))
	assert.Equal(t, "Report ready", toast.Title)
	assert.Equal(t, view.ID, toast.ViewID)

	status, env := srv.do(t, http.MethodGet, "/api/reports/payroll/download", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", env.Code)
}

func TestEventsForUnknownView(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodGet, "/api/views/nope/events", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestCORSPreflightOnRoutes(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/views", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
