package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/dto"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/service"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/response"
)

// EmployeeHandler 员工名册模块 HTTP 处理器
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// CreateEmployee 创建员工
// POST /api/v1/employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	emp, err := h.employeeSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.Created(c, emp)
}

// GetEmployee 获取员工详情
// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	userID, ok := employeeIDParam(c)
	if !ok {
		return
	}

	emp, err := h.employeeSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, emp)
}

// ListEmployees 获取员工列表
// GET /api/v1/employees?page=1&page_size=20
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var req dto.EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.employeeSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OKPage(c, list.Items, int64(list.Total), req.GetPage(), req.GetPageSize())
}

// UpdateEmployee 更新员工信息
// PUT /api/v1/employees/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	userID, ok := employeeIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	emp, err := h.employeeSvc.Update(c.Request.Context(), actor, userID, &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, emp)
}

// DeactivateEmployee 停用员工（离册，不删行）
// DELETE /api/v1/employees/:id
func (h *EmployeeHandler) DeactivateEmployee(c *gin.Context) {
	userID, ok := employeeIDParam(c)
	if !ok {
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.employeeSvc.Deactivate(c.Request.Context(), actor, userID); err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetBalance 查询年假余额
// GET /api/v1/employees/:id/balance
// 员工只能查本人余额，管理员不限
func (h *EmployeeHandler) GetBalance(c *gin.Context) {
	userID, ok := employeeIDParam(c)
	if !ok {
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	balance, err := h.employeeSvc.GetBalance(c.Request.Context(), actor, userID)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, balance)
}

// AdjustBalance 调整年假余额
// PUT /api/v1/employees/:id/balance
func (h *EmployeeHandler) AdjustBalance(c *gin.Context) {
	userID, ok := employeeIDParam(c)
	if !ok {
		return
	}

	var req dto.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	balance, err := h.employeeSvc.AdjustBalance(c.Request.Context(), actor, userID, &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, balance)
}

// employeeIDParam 解析路径参数中的员工ID
func employeeIDParam(c *gin.Context) (int, bool) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		response.BadRequest(c, 10001, "员工ID无效")
		return 0, false
	}
	return userID, true
}

// handleEmployeeError 统一处理员工名册模块业务错误
func (h *EmployeeHandler) handleEmployeeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrEmployeeEmailExists):
		response.Conflict(c, 12002, "该邮箱已被其他员工使用")
	case errors.Is(err, service.ErrBalanceInsufficient):
		response.BadRequest(c, 12003, "年假余额不足，无法扣减")
	case errors.Is(err, service.ErrNotOwnEntry):
		response.Forbidden(c, 13008, "员工只能查询本人的年假余额")
	default:
		response.InternalError(c)
	}
}
