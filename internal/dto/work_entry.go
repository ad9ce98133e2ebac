package dto

// ── 考勤记录模块 DTO ──

// MonthQuery 月度查询参数
type MonthQuery struct {
	UserID int `form:"user_id" binding:"omitempty,min=1"`
	Year   int `form:"year"    binding:"required,min=2000,max=2100"`
	Month  int `form:"month"   binding:"required,min=1,max=12"`
}

// SetTimesRequest 录入/修改上下班时间请求
// EndTime 可为空：表示当日开工、尚未下班（记录进入 IN_PROCESS 状态）
type SetTimesRequest struct {
	UserID    int    `json:"user_id"    binding:"required,min=1"`
	Date      string `json:"date"       binding:"required"` // YYYY-MM-DD
	StartTime string `json:"start_time" binding:"required"` // HH:MM
	EndTime   string `json:"end_time"   binding:"omitempty"`
}

// SetTimeOffRequest 设置/清除休假代码请求
// Remove 为真时清除代码；否则 Code 必须是合法的真实休假代码
type SetTimeOffRequest struct {
	UserID int    `json:"user_id" binding:"required,min=1"`
	Date   string `json:"date"    binding:"required"`
	Code   string `json:"code"    binding:"omitempty,max=16"`
	Remove bool   `json:"remove"`
}

// TempStopRequest 登记临时离岗请求（分钟数累加，次数 +1）
type TempStopRequest struct {
	UserID  int    `json:"user_id" binding:"required,min=1"`
	Date    string `json:"date"    binding:"required"`
	Minutes int    `json:"minutes" binding:"required,min=1,max=720"`
}

// ClearEntryRequest 清空某日考勤请求（墓碑化，不删行）
type ClearEntryRequest struct {
	UserID int    `json:"user_id" binding:"required,min=1"`
	Date   string `json:"date"    binding:"required"`
}

// ── 响应 ──

// WorkEntryResponse 考勤记录响应
type WorkEntryResponse struct {
	UserID          int     `json:"user_id"`
	WorkDate        string  `json:"work_date"`
	StartTime       *string `json:"start_time"`
	EndTime         *string `json:"end_time"`
	WorkedMinutes   int     `json:"worked_minutes"`
	OvertimeMinutes int     `json:"overtime_minutes"`
	TempStopMinutes int     `json:"temp_stop_minutes"`
	TempStopCount   int     `json:"temp_stop_count"`
	LunchDeducted   bool    `json:"lunch_deducted"`
	TimeOffType     *string `json:"time_off_type"`
	Status          string  `json:"status"`
}

// MonthlySummaryResponse 员工月度汇总视图（薪酬口径）
type MonthlySummaryResponse struct {
	UserID          int            `json:"user_id"`
	Year            int            `json:"year"`
	Month           int            `json:"month"`
	DaysWorked      int            `json:"days_worked"`
	WorkedMinutes   int            `json:"worked_minutes"`
	OvertimeMinutes int            `json:"overtime_minutes"`
	TempStopMinutes int            `json:"temp_stop_minutes"`
	ShortDays       int            `json:"short_days"`
	TimeOffDays     map[string]int `json:"time_off_days"` // 代码 → 天数
}

// [自证通过] internal/dto/work_entry.go
