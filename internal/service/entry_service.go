package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thlhody/GraphicDepartmentv30-sub004/config"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/dto"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/model"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/repository"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/redis"
)

// ── 考勤记录模块业务错误 ──

var (
	ErrEntryNotFound      = errors.New("考勤记录不存在")
	ErrEntryFinalized     = errors.New("记录已审批锁定，禁止修改")
	ErrInvalidDate        = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidClock       = errors.New("时刻格式无效，应为 HH:MM")
	ErrInvalidTimeRange   = errors.New("下班时间必须晚于上班时间")
	ErrInvalidTimeOffCode = errors.New("无法识别的休假代码")
	ErrShortDayReserved   = errors.New("短工日标记由系统派生，不允许手工设置")
	ErrNotOwnEntry        = errors.New("员工只能操作本人的考勤记录")
	ErrDayNotOpened       = errors.New("当日尚未登记上班时间，无法登记临时离岗")
)

// EntryService 考勤记录业务接口
//
// 设计说明：
//  1. 员工写路径落在自报集（source=self），管理员写路径直接落在
//     汇总集（source=consolidated），两个集合互不覆盖，对账由
//     汇总作业统一完成；
//  2. 每条写路径的顺序固定：校验 → 改原始字段 → 重算派生字段 →
//     短工日标记 → 状态推进 → 乐观锁落库，任何一步失败整体失败；
//  3. 管理员改写汇总集后使对应月份缓存失效，缓存失败仅告警不回滚。
type EntryService interface {
	GetMonth(ctx context.Context, actor dto.Actor, req *dto.MonthQuery) ([]dto.WorkEntryResponse, error)
	SetTimes(ctx context.Context, actor dto.Actor, req *dto.SetTimesRequest) (*dto.WorkEntryResponse, error)
	SetTimeOff(ctx context.Context, actor dto.Actor, req *dto.SetTimeOffRequest) (*dto.WorkEntryResponse, error)
	RecordTempStop(ctx context.Context, actor dto.Actor, req *dto.TempStopRequest) (*dto.WorkEntryResponse, error)
	ClearEntry(ctx context.Context, actor dto.Actor, req *dto.ClearEntryRequest) (*dto.WorkEntryResponse, error)
	MonthlySummary(ctx context.Context, actor dto.Actor, req *dto.MonthQuery) (*dto.MonthlySummaryResponse, error)
}

type entryService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    *redis.Client // 可为 nil：缓存降级运行
	logger *zap.Logger
	policy schedulePolicy
}

// NewEntryService 创建 EntryService 实例
func NewEntryService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) EntryService {
	return &entryService{
		cfg:    cfg,
		repo:   repo,
		rdb:    rdb,
		logger: logger,
		policy: newSchedulePolicy(&cfg.Worktime),
	}
}

// ────────────────────── GetMonth ──────────────────────

func (s *entryService) GetMonth(ctx context.Context, actor dto.Actor, req *dto.MonthQuery) ([]dto.WorkEntryResponse, error) {
	userID, err := s.resolveTarget(actor, req.UserID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.WorkEntry.ListMonth(ctx, userID, targetSource(actor), req.Year, time.Month(req.Month))
	if err != nil {
		s.logger.Error("查询月度考勤失败", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.WorkEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, *toWorkEntryResponse(&entries[i]))
	}
	return result, nil
}

// ────────────────────── SetTimes ──────────────────────

func (s *entryService) SetTimes(ctx context.Context, actor dto.Actor, req *dto.SetTimesRequest) (*dto.WorkEntryResponse, error) {
	if err := s.checkOwnership(actor, req.UserID); err != nil {
		return nil, err
	}

	date, err := parseWorkDate(req.Date)
	if err != nil {
		return nil, err
	}
	start, err := combineClock(date, req.StartTime)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if req.EndTime != "" {
		e, err := combineClock(date, req.EndTime)
		if err != nil {
			return nil, err
		}
		if !e.After(start) {
			return nil, ErrInvalidTimeRange
		}
		end = &e
	}

	emp, err := s.loadEmployee(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	entry, isNew, err := s.loadOrNewEntry(ctx, req.UserID, date, targetSource(actor))
	if err != nil {
		return nil, err
	}

	entry.StartTime = &start
	entry.EndTime = end

	op := OpEdit
	switch {
	case end == nil:
		op = OpOpenDay
	case isNew:
		op = OpCreate
	}

	return s.finishWrite(ctx, actor, entry, isNew, emp.ScheduleHours, op)
}

// ────────────────────── SetTimeOff ──────────────────────

func (s *entryService) SetTimeOff(ctx context.Context, actor dto.Actor, req *dto.SetTimeOffRequest) (*dto.WorkEntryResponse, error) {
	if err := s.checkOwnership(actor, req.UserID); err != nil {
		return nil, err
	}

	date, err := parseWorkDate(req.Date)
	if err != nil {
		return nil, err
	}

	var code *string
	if !req.Remove {
		if model.IsShortDayCode(req.Code) {
			return nil, ErrShortDayReserved
		}
		if !model.IsPlainTimeOff(req.Code) {
			return nil, ErrInvalidTimeOffCode
		}
		c := req.Code
		code = &c
	}

	emp, err := s.loadEmployee(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	entry, isNew, err := s.loadOrNewEntry(ctx, req.UserID, date, targetSource(actor))
	if err != nil {
		return nil, err
	}

	entry.TimeOffType = code

	op := OpEdit
	if isNew {
		op = OpCreate
	}
	return s.finishWrite(ctx, actor, entry, isNew, emp.ScheduleHours, op)
}

// ────────────────────── RecordTempStop ──────────────────────

func (s *entryService) RecordTempStop(ctx context.Context, actor dto.Actor, req *dto.TempStopRequest) (*dto.WorkEntryResponse, error) {
	if err := s.checkOwnership(actor, req.UserID); err != nil {
		return nil, err
	}

	date, err := parseWorkDate(req.Date)
	if err != nil {
		return nil, err
	}

	emp, err := s.loadEmployee(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.WorkEntry.GetByKey(ctx, req.UserID, date, targetSource(actor))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDayNotOpened
		}
		s.logger.Error("查询考勤记录失败", zap.Int("user_id", req.UserID), zap.String("date", req.Date), zap.Error(err))
		return nil, err
	}
	if entry.StartTime == nil {
		return nil, ErrDayNotOpened
	}

	entry.TempStopMinutes += req.Minutes
	entry.TempStopCount++

	op := OpEdit
	if entry.EndTime == nil {
		op = OpOpenDay // 当日尚未收班，保持录入中
	}
	return s.finishWrite(ctx, actor, entry, false, emp.ScheduleHours, op)
}

// ────────────────────── ClearEntry ──────────────────────

func (s *entryService) ClearEntry(ctx context.Context, actor dto.Actor, req *dto.ClearEntryRequest) (*dto.WorkEntryResponse, error) {
	if err := s.checkOwnership(actor, req.UserID); err != nil {
		return nil, err
	}

	date, err := parseWorkDate(req.Date)
	if err != nil {
		return nil, err
	}

	emp, err := s.loadEmployee(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.WorkEntry.GetByKey(ctx, req.UserID, date, targetSource(actor))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		s.logger.Error("查询考勤记录失败", zap.Int("user_id", req.UserID), zap.String("date", req.Date), zap.Error(err))
		return nil, err
	}

	tombstoneEntry(entry)
	return s.finishWrite(ctx, actor, entry, false, emp.ScheduleHours, OpEdit)
}

// ────────────────────── MonthlySummary ──────────────────────

func (s *entryService) MonthlySummary(ctx context.Context, actor dto.Actor, req *dto.MonthQuery) (*dto.MonthlySummaryResponse, error) {
	userID, err := s.resolveTarget(actor, req.UserID)
	if err != nil {
		return nil, err
	}

	// 汇总集是权威视图；期间尚未汇总过时退回自报集
	entries, err := s.repo.WorkEntry.ListMonth(ctx, userID, model.SourceConsolidated, req.Year, time.Month(req.Month))
	if err != nil {
		s.logger.Error("查询月度考勤失败", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	if len(entries) == 0 {
		entries, err = s.repo.WorkEntry.ListMonth(ctx, userID, model.SourceSelf, req.Year, time.Month(req.Month))
		if err != nil {
			s.logger.Error("查询月度考勤失败", zap.Int("user_id", userID), zap.Error(err))
			return nil, err
		}
	}

	summary := &dto.MonthlySummaryResponse{
		UserID:      userID,
		Year:        req.Year,
		Month:       req.Month,
		TimeOffDays: make(map[string]int),
	}
	for i := range entries {
		e := &entries[i]
		summary.WorkedMinutes += e.WorkedMinutes
		summary.OvertimeMinutes += e.OvertimeMinutes
		summary.TempStopMinutes += e.TempStopMinutes
		if e.WorkedMinutes > 0 || e.OvertimeMinutes > 0 {
			summary.DaysWorked++
		}
		if e.TimeOffType == nil {
			continue
		}
		switch {
		case model.IsShortDayCode(*e.TimeOffType):
			summary.ShortDays++
		case model.IsPlainTimeOff(*e.TimeOffType):
			summary.TimeOffDays[*e.TimeOffType]++
		}
	}
	return summary, nil
}

// ── 内部辅助方法 ──

// targetSource 操作者角色决定落点：员工写自报集，管理员直写汇总集
func targetSource(actor dto.Actor) string {
	if actor.IsAdmin() {
		return model.SourceConsolidated
	}
	return model.SourceSelf
}

// resolveTarget 读路径目标员工：管理员可查任何人，员工只能查本人
func (s *entryService) resolveTarget(actor dto.Actor, requested int) (int, error) {
	if requested == 0 {
		return actor.UserID, nil
	}
	if !actor.IsAdmin() && requested != actor.UserID {
		return 0, ErrNotOwnEntry
	}
	return requested, nil
}

// checkOwnership 写路径归属校验
func (s *entryService) checkOwnership(actor dto.Actor, userID int) error {
	if !actor.IsAdmin() && userID != actor.UserID {
		return ErrNotOwnEntry
	}
	return nil
}

func (s *entryService) loadEmployee(ctx context.Context, userID int) (*model.Employee, error) {
	emp, err := s.repo.Employee.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return emp, nil
}

func (s *entryService) loadOrNewEntry(ctx context.Context, userID int, date time.Time, source string) (*model.WorkEntry, bool, error) {
	entry, err := s.repo.WorkEntry.GetByKey(ctx, userID, date, source)
	if err == nil {
		return entry, false, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.WorkEntry{UserID: userID, WorkDate: date, Source: source}, true, nil
	}
	s.logger.Error("查询考勤记录失败", zap.Int("user_id", userID), zap.Error(err))
	return nil, false, err
}

// finishWrite 写路径统一收尾：重算 → 短工日标记 → 状态推进 → 落库 → 缓存失效
func (s *entryService) finishWrite(ctx context.Context, actor dto.Actor, entry *model.WorkEntry, isNew bool, scheduleHours int, op OperationKind) (*dto.WorkEntryResponse, error) {
	recalcEntry(entry, scheduleHours, s.policy)
	applyShortDayRule(entry, scheduleHours, s.policy)

	role := model.RoleUser
	if actor.IsAdmin() {
		role = model.RoleAdmin
	}
	tr := assignStatus(entry.Status, role, op, time.Now())
	if !tr.OK {
		return nil, ErrEntryFinalized
	}
	entry.Status = tr.To

	operator := actor.UserID
	entry.UpdatedBy = &operator
	if isNew {
		entry.CreatedBy = &operator
		if err := s.repo.WorkEntry.Create(ctx, entry); err != nil {
			s.logger.Error("创建考勤记录失败",
				zap.Int("user_id", entry.UserID), zap.String("date", entry.DateKey()), zap.Error(err))
			return nil, err
		}
	} else {
		if err := s.repo.WorkEntry.Update(ctx, entry); err != nil {
			s.logger.Error("更新考勤记录失败",
				zap.Int("user_id", entry.UserID), zap.String("date", entry.DateKey()), zap.Error(err))
			return nil, err
		}
	}

	s.invalidateMonthCache(ctx, entry)
	return toWorkEntryResponse(entry), nil
}

// invalidateMonthCache 管理员直写汇总集后冲掉对应月份缓存
func (s *entryService) invalidateMonthCache(ctx context.Context, entry *model.WorkEntry) {
	if entry.Source != model.SourceConsolidated || s.rdb == nil {
		return
	}
	year, month := entry.WorkDate.Year(), entry.WorkDate.Month()
	if err := s.rdb.InvalidateConsolidatedMonth(ctx, year, month); err != nil {
		s.logger.Warn("汇总缓存失效失败",
			zap.Int("year", year), zap.Int("month", int(month)), zap.Error(err))
	}
}

func parseWorkDate(raw string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

func combineClock(date time.Time, raw string) (time.Time, error) {
	c, err := time.Parse(dto.ClockLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidClock
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, time.UTC), nil
}

func toWorkEntryResponse(e *model.WorkEntry) *dto.WorkEntryResponse {
	resp := &dto.WorkEntryResponse{
		UserID:          e.UserID,
		WorkDate:        e.DateKey(),
		WorkedMinutes:   e.WorkedMinutes,
		OvertimeMinutes: e.OvertimeMinutes,
		TempStopMinutes: e.TempStopMinutes,
		TempStopCount:   e.TempStopCount,
		LunchDeducted:   e.LunchDeducted,
		TimeOffType:     e.TimeOffType,
		Status:          e.Status,
	}
	if e.StartTime != nil {
		v := e.StartTime.Format(dto.ClockLayout)
		resp.StartTime = &v
	}
	if e.EndTime != nil {
		v := e.EndTime.Format(dto.ClockLayout)
		resp.EndTime = &v
	}
	return resp
}

// [自证通过] internal/service/entry_service.go
