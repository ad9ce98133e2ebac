package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/thlhody/GraphicDepartmentv30-sub004/config"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/model"
	pkgerrors "github.com/thlhody/GraphicDepartmentv30-sub004/pkg/errors"
)

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[int]*model.Employee
	nextID    int
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[int]*model.Employee), nextID: 1}
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	if emp.UserID == 0 {
		emp.UserID = m.nextID
		m.nextID++
	} else if emp.UserID >= m.nextID {
		m.nextID = emp.UserID + 1
	}
	m.employees[emp.UserID] = emp
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, userID int) (*model.Employee, error) {
	if emp, ok := m.employees[userID]; ok {
		cp := *emp
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, emp := range m.employees {
		if emp.Email == email {
			cp := *emp
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) ListActive(_ context.Context) ([]model.Employee, error) {
	var result []model.Employee
	for _, emp := range m.employees {
		if emp.IsActive {
			result = append(result, *emp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockEmployeeRepo) List(_ context.Context, offset, limit int) ([]model.Employee, int64, error) {
	var result []model.Employee
	for _, emp := range m.employees {
		result = append(result, *emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	m.employees[emp.UserID] = emp
	return nil
}

func (m *mockEmployeeRepo) AdjustHolidayBalance(_ context.Context, userID, delta int) (int64, error) {
	emp, ok := m.employees[userID]
	if !ok {
		return 0, nil
	}
	if emp.HolidayBalance+delta < 0 {
		return 0, nil
	}
	emp.HolidayBalance += delta
	return 1, nil
}

func (m *mockEmployeeRepo) Deactivate(_ context.Context, userID int, operatorID int) error {
	if emp, ok := m.employees[userID]; ok {
		emp.IsActive = false
		emp.UpdatedBy = &operatorID
	}
	return nil
}

// ── Mock WorkEntryRepository ──

type mockWorkEntryRepo struct {
	entries      map[string]*model.WorkEntry // "userID|date|source"
	nextID       int
	replaceCalls int
	// 故障注入
	failListMonthFor map[int]error // userID → 返回该错误
	failListAll      error
	failCreate       error
	failReplace      error
}

func newMockWorkEntryRepo() *mockWorkEntryRepo {
	return &mockWorkEntryRepo{
		entries:          make(map[string]*model.WorkEntry),
		nextID:           1,
		failListMonthFor: make(map[int]error),
	}
}

func mockEntryKey(userID int, date time.Time, source string) string {
	return fmt.Sprintf("%d|%s|%s", userID, date.Format("2006-01-02"), source)
}

// seed 直接塞入一条记录（测试布景用）
func (m *mockWorkEntryRepo) seed(entry model.WorkEntry) {
	if entry.EntryID == "" {
		entry.EntryID = fmt.Sprintf("entry-%d", m.nextID)
		m.nextID++
	}
	if entry.Version == 0 {
		entry.Version = 1
	}
	m.entries[mockEntryKey(entry.UserID, entry.WorkDate, entry.Source)] = &entry
}

// get 按键读出当前存储值（断言用）
func (m *mockWorkEntryRepo) get(userID int, date time.Time, source string) *model.WorkEntry {
	return m.entries[mockEntryKey(userID, date, source)]
}

func (m *mockWorkEntryRepo) GetByKey(_ context.Context, userID int, workDate time.Time, source string) (*model.WorkEntry, error) {
	if e, ok := m.entries[mockEntryKey(userID, workDate, source)]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkEntryRepo) ListMonth(_ context.Context, userID int, source string, year int, month time.Month) ([]model.WorkEntry, error) {
	if err := m.failListMonthFor[userID]; err != nil {
		return nil, err
	}
	var result []model.WorkEntry
	for _, e := range m.entries {
		if e.UserID == userID && e.Source == source && inMonth(e.WorkDate, year, month) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WorkDate.Before(result[j].WorkDate) })
	return result, nil
}

func (m *mockWorkEntryRepo) ListMonthAll(_ context.Context, source string, year int, month time.Month) ([]model.WorkEntry, error) {
	if m.failListAll != nil {
		return nil, m.failListAll
	}
	var result []model.WorkEntry
	for _, e := range m.entries {
		if e.Source == source && inMonth(e.WorkDate, year, month) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].WorkDate.Equal(result[j].WorkDate) {
			return result[i].WorkDate.Before(result[j].WorkDate)
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

func (m *mockWorkEntryRepo) Create(_ context.Context, entry *model.WorkEntry) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	if entry.EntryID == "" {
		entry.EntryID = fmt.Sprintf("entry-%d", m.nextID)
		m.nextID++
	}
	if entry.Version == 0 {
		entry.Version = 1
	}
	cp := *entry
	m.entries[mockEntryKey(entry.UserID, entry.WorkDate, entry.Source)] = &cp
	return nil
}

func (m *mockWorkEntryRepo) Update(_ context.Context, entry *model.WorkEntry) error {
	for k, stored := range m.entries {
		if stored.EntryID != entry.EntryID {
			continue
		}
		if stored.Version != entry.Version {
			return pkgerrors.ErrOptimisticLock
		}
		cp := *entry
		cp.Version = entry.Version + 1
		m.entries[k] = &cp
		entry.Version = cp.Version
		return nil
	}
	return pkgerrors.ErrOptimisticLock
}

func (m *mockWorkEntryRepo) ReplaceMonth(_ context.Context, source string, year int, month time.Month, entries []model.WorkEntry) error {
	if m.failReplace != nil {
		return m.failReplace
	}
	m.replaceCalls++
	for k, e := range m.entries {
		if e.Source == source && inMonth(e.WorkDate, year, month) {
			delete(m.entries, k)
		}
	}
	for _, e := range entries {
		e.EntryID = fmt.Sprintf("entry-%d", m.nextID)
		m.nextID++
		e.Source = source
		e.Version = 1
		cp := e
		m.entries[mockEntryKey(e.UserID, e.WorkDate, source)] = &cp
	}
	return nil
}

func inMonth(date time.Time, year int, month time.Month) bool {
	return date.Year() == year && date.Month() == month
}

// ── Mock ConsolidationRunRepository ──

type mockRunRepo struct {
	runs []model.ConsolidationRun
}

func newMockRunRepo() *mockRunRepo {
	return &mockRunRepo{}
}

func (m *mockRunRepo) Create(_ context.Context, run *model.ConsolidationRun) error {
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockRunRepo) List(_ context.Context, year, month, offset, limit int) ([]model.ConsolidationRun, int64, error) {
	var result []model.ConsolidationRun
	for _, r := range m.runs {
		if year > 0 && (r.Year != year || r.Month != month) {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartedAt.After(result[j].StartedAt) })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

// ── 共享测试辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Worktime: config.WorktimeConfig{
			DefaultScheduleHours:  8,
			LunchThresholdMinutes: 360,
			LunchBreakMinutes:     30,
			ConsolidateWorkers:    2,
			CacheTTL:              time.Minute,
		},
		Feature: config.FeatureConfig{HolidayImportEnabled: true},
	}
}

func mkDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func mkTime(year int, month time.Month, day, hour, minute int) *time.Time {
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func strPtr(s string) *string {
	return &s
}

func testEmployee(userID int, scheduleHours int) *model.Employee {
	return &model.Employee{
		UserID:        userID,
		Name:          fmt.Sprintf("员工%d", userID),
		Email:         fmt.Sprintf("user%d@example.com", userID),
		ScheduleHours: scheduleHours,
		IsActive:      true,
	}
}
