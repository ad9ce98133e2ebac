package dto

// ── 月度汇总模块 DTO ──

// ConsolidateRequest 触发汇总请求
type ConsolidateRequest struct {
	Year  int `json:"year"  binding:"required,min=2000,max=2100"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// ApprovePeriodRequest 期末审批锁定请求
type ApprovePeriodRequest struct {
	Year  int `json:"year"  binding:"required,min=2000,max=2100"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// RunListRequest 汇总运行记录查询参数
type RunListRequest struct {
	Year  int `form:"year"  binding:"omitempty,min=2000,max=2100"`
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
	PaginationRequest
}

// ── 响应 ──

// ConsolidationResult 汇总运行结构化结果
// Written=false 表示幂等命中：数据与上一版完全一致，未落盘
type ConsolidationResult struct {
	RunID           string `json:"run_id"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	EmployeesTotal  int    `json:"employees_total"`
	EmployeesFailed int    `json:"employees_failed"`
	MergeOps        int    `json:"merge_ops"`
	EntryCount      int    `json:"entry_count"`
	FinalizedKept   int    `json:"finalized_kept"`
	Written         bool   `json:"written"`
	Message         string `json:"message"`
	DurationMillis  int64  `json:"duration_millis"`
}

// ConsolidationRunResponse 汇总运行历史记录
type ConsolidationRunResponse struct {
	RunID           string `json:"run_id"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	EmployeesTotal  int    `json:"employees_total"`
	EmployeesFailed int    `json:"employees_failed"`
	MergeOps        int    `json:"merge_ops"`
	EntryCount      int    `json:"entry_count"`
	FinalizedKept   int    `json:"finalized_kept"`
	Written         bool   `json:"written"`
	Message         string `json:"message"`
	TriggeredBy     int    `json:"triggered_by"`
	StartedAt       string `json:"started_at"`
	FinishedAt      string `json:"finished_at"`
}

// ApprovePeriodResult 审批锁定结果
type ApprovePeriodResult struct {
	Year            int `json:"year"`
	Month           int `json:"month"`
	EntriesApproved int `json:"entries_approved"`
	AlreadyFinal    int `json:"already_final"`
}

// [自证通过] internal/dto/consolidation.go
