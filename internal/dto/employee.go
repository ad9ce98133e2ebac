package dto

// ── 员工名册模块 DTO ──

// CreateEmployeeRequest 创建员工请求
type CreateEmployeeRequest struct {
	Name           string `json:"name"            binding:"required,max=64"`
	Email          string `json:"email"           binding:"required,email,max=128"`
	ScheduleHours  int    `json:"schedule_hours"  binding:"omitempty,min=1,max=24"`
	HolidayBalance int    `json:"holiday_balance" binding:"omitempty,min=0"`
}

// UpdateEmployeeRequest 更新员工请求（零值字段不更新）
type UpdateEmployeeRequest struct {
	Name          string `json:"name"           binding:"omitempty,max=64"`
	Email         string `json:"email"          binding:"omitempty,email,max=128"`
	ScheduleHours int    `json:"schedule_hours" binding:"omitempty,min=1,max=24"`
}

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	PaginationRequest
}

// AdjustBalanceRequest 年假余额调整请求（delta 可正可负）
type AdjustBalanceRequest struct {
	Delta  int    `json:"delta"  binding:"required"`
	Reason string `json:"reason" binding:"omitempty,max=255"`
}

// ── 响应 ──

// EmployeeResponse 员工信息
type EmployeeResponse struct {
	UserID         int    `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ScheduleHours  int    `json:"schedule_hours"`
	HolidayBalance int    `json:"holiday_balance"`
	IsActive       bool   `json:"is_active"`
}

// EmployeeListResponse 员工列表响应
type EmployeeListResponse struct {
	Total int                 `json:"total"`
	Items []*EmployeeResponse `json:"items"`
}

// HolidayBalanceResponse 年假余额响应
type HolidayBalanceResponse struct {
	UserID  int `json:"user_id"`
	Balance int `json:"balance"`
}
