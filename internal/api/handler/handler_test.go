package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/dto"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/service"
	pkgerrors "github.com/thlhody/GraphicDepartmentv30-sub004/pkg/errors"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock EntryService ──

type mockEntryService struct {
	getMonthResult   []dto.WorkEntryResponse
	getMonthErr      error
	setTimesResult   *dto.WorkEntryResponse
	setTimesErr      error
	setTimeOffResult *dto.WorkEntryResponse
	setTimeOffErr    error
	tempStopResult   *dto.WorkEntryResponse
	tempStopErr      error
	clearResult      *dto.WorkEntryResponse
	clearErr         error
	summaryResult    *dto.MonthlySummaryResponse
	summaryErr       error
}

func (m *mockEntryService) GetMonth(_ context.Context, _ dto.Actor, _ *dto.MonthQuery) ([]dto.WorkEntryResponse, error) {
	return m.getMonthResult, m.getMonthErr
}
func (m *mockEntryService) SetTimes(_ context.Context, _ dto.Actor, _ *dto.SetTimesRequest) (*dto.WorkEntryResponse, error) {
	return m.setTimesResult, m.setTimesErr
}
func (m *mockEntryService) SetTimeOff(_ context.Context, _ dto.Actor, _ *dto.SetTimeOffRequest) (*dto.WorkEntryResponse, error) {
	return m.setTimeOffResult, m.setTimeOffErr
}
func (m *mockEntryService) RecordTempStop(_ context.Context, _ dto.Actor, _ *dto.TempStopRequest) (*dto.WorkEntryResponse, error) {
	return m.tempStopResult, m.tempStopErr
}
func (m *mockEntryService) ClearEntry(_ context.Context, _ dto.Actor, _ *dto.ClearEntryRequest) (*dto.WorkEntryResponse, error) {
	return m.clearResult, m.clearErr
}
func (m *mockEntryService) MonthlySummary(_ context.Context, _ dto.Actor, _ *dto.MonthQuery) (*dto.MonthlySummaryResponse, error) {
	return m.summaryResult, m.summaryErr
}

// ── Mock ConsolidationService ──

type mockConsolidationService struct {
	consolidateResult *dto.ConsolidationResult
	consolidateErr    error
	getResult         []dto.WorkEntryResponse
	getErr            error
	runsResult        []dto.ConsolidationRunResponse
	runsTotal         int64
	runsErr           error
	approveResult     *dto.ApprovePeriodResult
	approveErr        error
}

func (m *mockConsolidationService) Consolidate(_ context.Context, _ dto.Actor, _, _ int) (*dto.ConsolidationResult, error) {
	return m.consolidateResult, m.consolidateErr
}
func (m *mockConsolidationService) GetConsolidated(_ context.Context, _, _ int) ([]dto.WorkEntryResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockConsolidationService) ListRuns(_ context.Context, _ *dto.RunListRequest) ([]dto.ConsolidationRunResponse, int64, error) {
	return m.runsResult, m.runsTotal, m.runsErr
}
func (m *mockConsolidationService) ApprovePeriod(_ context.Context, _ dto.Actor, _, _ int) (*dto.ApprovePeriodResult, error) {
	return m.approveResult, m.approveErr
}

// ── Mock EmployeeService ──

type mockEmployeeService struct {
	createResult  *dto.EmployeeResponse
	createErr     error
	getResult     *dto.EmployeeResponse
	getErr        error
	listResult    *dto.EmployeeListResponse
	listErr       error
	updateResult  *dto.EmployeeResponse
	updateErr     error
	deactivateErr error
	balanceResult *dto.HolidayBalanceResponse
	balanceErr    error
	adjustResult  *dto.HolidayBalanceResponse
	adjustErr     error
}

func (m *mockEmployeeService) Create(_ context.Context, _ dto.Actor, _ *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockEmployeeService) GetByID(_ context.Context, _ int) (*dto.EmployeeResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockEmployeeService) List(_ context.Context, _ *dto.EmployeeListRequest) (*dto.EmployeeListResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockEmployeeService) Update(_ context.Context, _ dto.Actor, _ int, _ *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockEmployeeService) Deactivate(_ context.Context, _ dto.Actor, _ int) error {
	return m.deactivateErr
}
func (m *mockEmployeeService) GetBalance(_ context.Context, _ dto.Actor, _ int) (*dto.HolidayBalanceResponse, error) {
	return m.balanceResult, m.balanceErr
}
func (m *mockEmployeeService) AdjustBalance(_ context.Context, _ dto.Actor, _ int, _ *dto.AdjustBalanceRequest) (*dto.HolidayBalanceResponse, error) {
	return m.adjustResult, m.adjustErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportConsolidatedMonth(_ context.Context, _, _ int) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ── Mock CalendarService ──

type mockCalendarService struct {
	importResult *dto.HolidayImportResult
	importErr    error
}

func (m *mockCalendarService) ImportNationalHolidays(_ context.Context, _ dto.Actor, _ int, _ io.Reader) (*dto.HolidayImportResult, error) {
	return m.importResult, m.importErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func setActor(c *gin.Context) {
	c.Set("actor_id", 9)
	c.Set("actor_role", "admin")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// EntryHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEntryHandler_SetTimes_Success(t *testing.T) {
	mock := &mockEntryService{
		setTimesResult: &dto.WorkEntryResponse{
			UserID:        1,
			WorkDate:      "2025-06-03",
			WorkedMinutes: 480,
			Status:        "USER_INPUT",
		},
	}
	h := NewEntryHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("PUT", "/entries/times", jsonBody(dto.SetTimesRequest{
		UserID:    1,
		Date:      "2025-06-03",
		StartTime: "08:00",
		EndTime:   "17:00",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/entries/times", func(c *gin.Context) {
		setActor(c)
		h.SetTimes(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestEntryHandler_SetTimes_BadJSON(t *testing.T) {
	mock := &mockEntryService{}
	h := NewEntryHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("PUT", "/entries/times", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/entries/times", func(c *gin.Context) {
		setActor(c)
		h.SetTimes(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEntryHandler_SetTimes_Unauthenticated(t *testing.T) {
	mock := &mockEntryService{}
	h := NewEntryHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("PUT", "/entries/times", jsonBody(dto.SetTimesRequest{
		UserID:    1,
		Date:      "2025-06-03",
		StartTime: "08:00",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/entries/times", h.SetTimes) // no actor injected
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestEntryHandler_GetMonth_Success(t *testing.T) {
	mock := &mockEntryService{
		getMonthResult: []dto.WorkEntryResponse{
			{UserID: 1, WorkDate: "2025-06-03", WorkedMinutes: 480},
		},
	}
	h := NewEntryHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/entries?year=2025&month=6", nil)

	r := gin.New()
	r.GET("/entries", func(c *gin.Context) {
		setActor(c)
		h.GetMonth(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestEntryHandler_GetMonth_MissingPeriod(t *testing.T) {
	mock := &mockEntryService{}
	h := NewEntryHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/entries", nil) // no year/month

	r := gin.New()
	r.GET("/entries", func(c *gin.Context) {
		setActor(c)
		h.GetMonth(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEntryHandler_ClearEntry_Success(t *testing.T) {
	mock := &mockEntryService{
		clearResult: &dto.WorkEntryResponse{UserID: 1, WorkDate: "2025-06-03"},
	}
	h := NewEntryHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("DELETE", "/entries", jsonBody(dto.ClearEntryRequest{
		UserID: 1,
		Date:   "2025-06-03",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.DELETE("/entries", func(c *gin.Context) {
		setActor(c)
		h.ClearEntry(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestEntryHandler_MonthlySummary_Success(t *testing.T) {
	mock := &mockEntryService{
		summaryResult: &dto.MonthlySummaryResponse{
			UserID:     1,
			Year:       2025,
			Month:      6,
			DaysWorked: 20,
		},
	}
	h := NewEntryHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/entries/summary?year=2025&month=6", nil)

	r := gin.New()
	r.GET("/entries/summary", func(c *gin.Context) {
		setActor(c)
		h.MonthlySummary(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestEntryHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrEntryNotFound, 404, 13001},
		{"Finalized", service.ErrEntryFinalized, 400, 13002},
		{"InvalidDate", service.ErrInvalidDate, 400, 13003},
		{"InvalidClock", service.ErrInvalidClock, 400, 13004},
		{"InvalidRange", service.ErrInvalidTimeRange, 400, 13005},
		{"InvalidTimeOffCode", service.ErrInvalidTimeOffCode, 400, 13006},
		{"ShortDayReserved", service.ErrShortDayReserved, 400, 13007},
		{"NotOwnEntry", service.ErrNotOwnEntry, 403, 13008},
		{"DayNotOpened", service.ErrDayNotOpened, 400, 13009},
		{"EmployeeNotFound", service.ErrEmployeeNotFound, 404, 12001},
		{"OptimisticLock", pkgerrors.ErrOptimisticLock, 409, 13010},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockEntryService{getMonthErr: tt.err}
			h := NewEntryHandler(mock)

			w := setupRecorder()
			req := httptest.NewRequest("GET", "/entries?year=2025&month=6", nil)

			r := gin.New()
			r.GET("/entries", func(c *gin.Context) {
				setActor(c)
				h.GetMonth(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// ConsolidationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestConsolidationHandler_Consolidate_Success(t *testing.T) {
	mock := &mockConsolidationService{
		consolidateResult: &dto.ConsolidationResult{
			RunID:          "run-1",
			Year:           2025,
			Month:          6,
			EmployeesTotal: 5,
			Written:        true,
		},
	}
	h := NewConsolidationHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/consolidations", jsonBody(dto.ConsolidateRequest{
		Year:  2025,
		Month: 6,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/consolidations", func(c *gin.Context) {
		setActor(c)
		h.Consolidate(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestConsolidationHandler_Consolidate_BadJSON(t *testing.T) {
	mock := &mockConsolidationService{}
	h := NewConsolidationHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/consolidations", bytes.NewReader([]byte("bad")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/consolidations", func(c *gin.Context) {
		setActor(c)
		h.Consolidate(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestConsolidationHandler_Consolidate_FutureMonth(t *testing.T) {
	mock := &mockConsolidationService{consolidateErr: service.ErrPeriodInFuture}
	h := NewConsolidationHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/consolidations", jsonBody(dto.ConsolidateRequest{
		Year:  2099,
		Month: 1,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/consolidations", func(c *gin.Context) {
		setActor(c)
		h.Consolidate(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14002 {
		t.Errorf("expected error code 14002, got %d", resp.Code)
	}
}

func TestConsolidationHandler_Consolidate_BaseUnavailable(t *testing.T) {
	mock := &mockConsolidationService{consolidateErr: service.ErrBaseUnavailable}
	h := NewConsolidationHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/consolidations", jsonBody(dto.ConsolidateRequest{
		Year:  2025,
		Month: 6,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/consolidations", func(c *gin.Context) {
		setActor(c)
		h.Consolidate(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14003 {
		t.Errorf("expected error code 14003, got %d", resp.Code)
	}
}

func TestConsolidationHandler_GetConsolidated_Success(t *testing.T) {
	mock := &mockConsolidationService{
		getResult: []dto.WorkEntryResponse{
			{UserID: 1, WorkDate: "2025-06-03", Status: "CONSOLIDATED"},
		},
	}
	h := NewConsolidationHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/consolidations?year=2025&month=6", nil)

	r := gin.New()
	r.GET("/consolidations", h.GetConsolidated)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestConsolidationHandler_ListRuns_Success(t *testing.T) {
	mock := &mockConsolidationService{
		runsResult: []dto.ConsolidationRunResponse{
			{RunID: "run-1", Year: 2025, Month: 6},
		},
		runsTotal: 1,
	}
	h := NewConsolidationHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/consolidations/runs?year=2025&month=6", nil)

	r := gin.New()
	r.GET("/consolidations/runs", h.ListRuns)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestConsolidationHandler_ApprovePeriod_Success(t *testing.T) {
	mock := &mockConsolidationService{
		approveResult: &dto.ApprovePeriodResult{
			Year:            2025,
			Month:           6,
			EntriesApproved: 40,
		},
	}
	h := NewConsolidationHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/consolidations/approve", jsonBody(dto.ApprovePeriodRequest{
		Year:  2025,
		Month: 6,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/consolidations/approve", func(c *gin.Context) {
		setActor(c)
		h.ApprovePeriod(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestConsolidationHandler_ApprovePeriod_Nothing(t *testing.T) {
	mock := &mockConsolidationService{approveErr: service.ErrNothingToApprove}
	h := NewConsolidationHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/consolidations/approve", jsonBody(dto.ApprovePeriodRequest{
		Year:  2025,
		Month: 6,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/consolidations/approve", func(c *gin.Context) {
		setActor(c)
		h.ApprovePeriod(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14004 {
		t.Errorf("expected error code 14004, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EmployeeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEmployeeHandler_Create_Success(t *testing.T) {
	mock := &mockEmployeeService{
		createResult: &dto.EmployeeResponse{
			UserID: 1,
			Name:   "张伟",
			Email:  "zhangwei@example.com",
		},
	}
	h := NewEmployeeHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/employees", jsonBody(dto.CreateEmployeeRequest{
		Name:  "张伟",
		Email: "zhangwei@example.com",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/employees", func(c *gin.Context) {
		setActor(c)
		h.CreateEmployee(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestEmployeeHandler_Create_DuplicateEmail(t *testing.T) {
	mock := &mockEmployeeService{createErr: service.ErrEmployeeEmailExists}
	h := NewEmployeeHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/employees", jsonBody(dto.CreateEmployeeRequest{
		Name:  "张伟",
		Email: "zhangwei@example.com",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/employees", func(c *gin.Context) {
		setActor(c)
		h.CreateEmployee(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12002 {
		t.Errorf("expected error code 12002, got %d", resp.Code)
	}
}

func TestEmployeeHandler_Create_BadJSON(t *testing.T) {
	mock := &mockEmployeeService{}
	h := NewEmployeeHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/employees", bytes.NewReader([]byte("bad")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/employees", func(c *gin.Context) {
		setActor(c)
		h.CreateEmployee(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEmployeeHandler_Get_BadID(t *testing.T) {
	mock := &mockEmployeeService{}
	h := NewEmployeeHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/employees/abc", nil)

	r := gin.New()
	r.GET("/employees/:id", h.GetEmployee)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEmployeeHandler_Get_NotFound(t *testing.T) {
	mock := &mockEmployeeService{getErr: service.ErrEmployeeNotFound}
	h := NewEmployeeHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/employees/77", nil)

	r := gin.New()
	r.GET("/employees/:id", h.GetEmployee)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12001 {
		t.Errorf("expected error code 12001, got %d", resp.Code)
	}
}

func TestEmployeeHandler_AdjustBalance_Insufficient(t *testing.T) {
	mock := &mockEmployeeService{adjustErr: service.ErrBalanceInsufficient}
	h := NewEmployeeHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("PUT", "/employees/1/balance", jsonBody(dto.AdjustBalanceRequest{
		Delta: -10,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/employees/:id/balance", func(c *gin.Context) {
		setActor(c)
		h.AdjustBalance(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12003 {
		t.Errorf("expected error code 12003, got %d", resp.Code)
	}
}

func TestEmployeeHandler_GetBalance_Forbidden(t *testing.T) {
	mock := &mockEmployeeService{balanceErr: service.ErrNotOwnEntry}
	h := NewEmployeeHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/employees/2/balance", nil)

	r := gin.New()
	r.GET("/employees/:id/balance", func(c *gin.Context) {
		setActor(c)
		h.GetBalance(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	buf := bytes.NewBufferString("excel content")
	mock := &mockExportService{
		buf:      buf,
		filename: "考勤汇总_2025-06.xlsx",
	}
	h := NewExportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/export/consolidated?year=2025&month=6", nil)

	r := gin.New()
	r.GET("/export/consolidated", h.ExportConsolidated)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_MissingPeriod(t *testing.T) {
	mock := &mockExportService{}
	h := NewExportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/export/consolidated", nil)

	r := gin.New()
	r.GET("/export/consolidated", h.ExportConsolidated)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_EmptyMonth(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportEmptyMonth}
	h := NewExportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/export/consolidated?year=2025&month=6", nil)

	r := gin.New()
	r.GET("/export/consolidated", h.ExportConsolidated)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16102 {
		t.Errorf("expected error code 16102, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CalendarHandler Tests
// ═══════════════════════════════════════════════════════════

func icsUpload(t *testing.T, year string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if year != "" {
		if err := mw.WriteField("year", year); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if withFile {
		fw, err := mw.CreateFormFile("file", "holidays.ics")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR\n"))
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestCalendarHandler_Import_Success(t *testing.T) {
	mock := &mockCalendarService{
		importResult: &dto.HolidayImportResult{
			Year:           2025,
			Holidays:       3,
			EntriesCreated: 15,
		},
	}
	h := NewCalendarHandler(mock)

	body, contentType := icsUpload(t, "2025", true)
	w := setupRecorder()
	req := httptest.NewRequest("POST", "/calendar/holidays", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/calendar/holidays", func(c *gin.Context) {
		setActor(c)
		h.ImportHolidays(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestCalendarHandler_Import_MissingFile(t *testing.T) {
	mock := &mockCalendarService{}
	h := NewCalendarHandler(mock)

	body, contentType := icsUpload(t, "2025", false)
	w := setupRecorder()
	req := httptest.NewRequest("POST", "/calendar/holidays", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/calendar/holidays", func(c *gin.Context) {
		setActor(c)
		h.ImportHolidays(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15000 {
		t.Errorf("expected error code 15000, got %d", resp.Code)
	}
}

func TestCalendarHandler_Import_BadYear(t *testing.T) {
	mock := &mockCalendarService{}
	h := NewCalendarHandler(mock)

	body, contentType := icsUpload(t, "", true)
	w := setupRecorder()
	req := httptest.NewRequest("POST", "/calendar/holidays", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/calendar/holidays", func(c *gin.Context) {
		setActor(c)
		h.ImportHolidays(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCalendarHandler_Import_ParseFailure(t *testing.T) {
	mock := &mockCalendarService{importErr: service.ErrCalendarParse}
	h := NewCalendarHandler(mock)

	body, contentType := icsUpload(t, "2025", true)
	w := setupRecorder()
	req := httptest.NewRequest("POST", "/calendar/holidays", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/calendar/holidays", func(c *gin.Context) {
		setActor(c)
		h.ImportHolidays(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15002 {
		t.Errorf("expected error code 15002, got %d", resp.Code)
	}
}

func TestCalendarHandler_Import_FeatureDisabled(t *testing.T) {
	mock := &mockCalendarService{importErr: service.ErrHolidayImportDisabled}
	h := NewCalendarHandler(mock)

	body, contentType := icsUpload(t, "2025", true)
	w := setupRecorder()
	req := httptest.NewRequest("POST", "/calendar/holidays", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/calendar/holidays", func(c *gin.Context) {
		setActor(c)
		h.ImportHolidays(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15004 {
		t.Errorf("expected error code 15004, got %d", resp.Code)
	}
}
