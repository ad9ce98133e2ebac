package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/thlhody/GraphicDepartmentv30-sub004/config"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/dto"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/model"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/repository"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/redis"
)

// ── 节假日日历模块业务错误 ──

var (
	ErrCalendarParse         = errors.New("日历文件解析失败")
	ErrCalendarEmpty         = errors.New("日历中没有该年度可导入的节假日")
	ErrHolidayImportDisabled = errors.New("节假日导入功能未启用")
)

// CalendarService 节假日日历业务接口
//
// 设计说明：
//  1. 导入对全员落 SN 记录到汇总集，作为该日的种子数据；
//  2. 种子记录状态为 CONSOLIDATED（非管理员署名）：员工当天照常
//     出勤并自报时，合并时员工数据折入，不被种子压住；
//  3. 该日已有记录（任何状态）一律跳过计数，导入不覆盖既有数据。
type CalendarService interface {
	// ImportNationalHolidays 从 ICS 日历导入某年度法定节假日
	ImportNationalHolidays(ctx context.Context, actor dto.Actor, year int, r io.Reader) (*dto.HolidayImportResult, error)
}

type calendarService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    *redis.Client // 可为 nil：缓存降级运行
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) CalendarService {
	return &calendarService{cfg: cfg, repo: repo, rdb: rdb, logger: logger}
}

// ════════════════════════════════════════════════════════════
// ImportNationalHolidays — 年度节假日导入
// ════════════════════════════════════════════════════════════

func (s *calendarService) ImportNationalHolidays(ctx context.Context, actor dto.Actor, year int, r io.Reader) (*dto.HolidayImportResult, error) {
	if !s.cfg.Feature.HolidayImportEnabled {
		return nil, ErrHolidayImportDisabled
	}
	if year < 2000 || year > 2100 {
		return nil, ErrPeriodInvalid
	}

	// 1. 解析日历并过滤到目标年度
	parsed, err := parseHolidayCalendar(r)
	if err != nil {
		s.logger.Error("解析节假日日历失败", zap.Int("year", year), zap.Error(err))
		return nil, ErrCalendarParse
	}
	var holidays []parsedHoliday
	for _, h := range parsed {
		if h.Date.Year() == year {
			holidays = append(holidays, h)
		}
	}
	if len(holidays) == 0 {
		return nil, ErrCalendarEmpty
	}

	// 2. 装载名册与涉及月份的既有汇总记录
	roster, err := s.repo.Employee.ListActive(ctx)
	if err != nil {
		s.logger.Error("加载员工名册失败", zap.Error(err))
		return nil, err
	}

	months := make(map[time.Month]bool)
	for _, h := range holidays {
		months[h.Date.Month()] = true
	}
	existing := make(map[string]bool)
	for month := range months {
		entries, err := s.repo.WorkEntry.ListMonthAll(ctx, model.SourceConsolidated, year, month)
		if err != nil {
			s.logger.Error("查询汇总集失败", zap.Int("year", year), zap.Int("month", int(month)), zap.Error(err))
			return nil, err
		}
		for i := range entries {
			existing[entryKey(entries[i].UserID, entries[i].WorkDate)] = true
		}
	}

	// 3. 逐 (节假日 × 员工) 落种子记录；已有记录跳过
	operator := actor.UserID
	now := time.Now()
	created, skipped := 0, 0
	touchedMonths := make(map[time.Month]bool)
	for _, h := range holidays {
		for _, emp := range roster {
			if existing[entryKey(emp.UserID, h.Date)] {
				skipped++
				continue
			}

			code := model.TimeOffHoliday
			entry := &model.WorkEntry{
				UserID:      emp.UserID,
				WorkDate:    h.Date,
				Source:      model.SourceConsolidated,
				TimeOffType: &code,
			}
			tr := assignStatus("", model.RoleAdmin, OpConsolidate, now)
			entry.Status = tr.To
			entry.CreatedBy = &operator
			entry.UpdatedBy = &operator

			if err := s.repo.WorkEntry.Create(ctx, entry); err != nil {
				s.logger.Error("落节假日记录失败",
					zap.Int("user_id", emp.UserID), zap.String("date", h.Date.Format(dto.DateLayout)),
					zap.String("holiday", h.Name), zap.Error(err))
				continue
			}
			created++
			touchedMonths[h.Date.Month()] = true
		}
	}

	// 4. 冲掉涉及月份的汇总缓存
	if s.rdb != nil {
		for month := range touchedMonths {
			if err := s.rdb.InvalidateConsolidatedMonth(ctx, year, month); err != nil {
				s.logger.Warn("汇总缓存失效失败", zap.Int("year", year), zap.Int("month", int(month)), zap.Error(err))
			}
		}
	}

	dates := make([]string, 0, len(holidays))
	for _, h := range holidays {
		dates = append(dates, h.Date.Format(dto.DateLayout))
	}

	s.logger.Info("节假日导入完成",
		zap.Int("year", year), zap.Int("holidays", len(holidays)),
		zap.Int("entries_created", created), zap.Int("skipped", skipped),
		zap.Int("operator", actor.UserID))

	return &dto.HolidayImportResult{
		Year:           year,
		Holidays:       len(holidays),
		EntriesCreated: created,
		Skipped:        skipped,
		Dates:          dates,
	}, nil
}

// entryKey 既有记录判重键
func entryKey(userID int, date time.Time) string {
	return date.Format(dto.DateLayout) + "#" + strconv.Itoa(userID)
}
