package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/dto"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/service"
	pkgerrors "github.com/thlhody/GraphicDepartmentv30-sub004/pkg/errors"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/response"
)

// EntryHandler 考勤记录模块 HTTP 处理器
type EntryHandler struct {
	entrySvc service.EntryService
}

// NewEntryHandler 创建 EntryHandler
func NewEntryHandler(entrySvc service.EntryService) *EntryHandler {
	return &EntryHandler{entrySvc: entrySvc}
}

// GetMonth 获取某员工某月考勤记录
// GET /api/v1/entries?user_id=1&year=2025&month=6
// user_id 缺省时取当前操作者本人
func (h *EntryHandler) GetMonth(c *gin.Context) {
	var req dto.MonthQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entries, err := h.entrySvc.GetMonth(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// SetTimes 录入/修改上下班时间
// PUT /api/v1/entries/times
// end_time 为空表示当日开工、尚未下班
func (h *EntryHandler) SetTimes(c *gin.Context) {
	var req dto.SetTimesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entry, err := h.entrySvc.SetTimes(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// SetTimeOff 设置/清除休假代码
// PUT /api/v1/entries/timeoff
func (h *EntryHandler) SetTimeOff(c *gin.Context) {
	var req dto.SetTimeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entry, err := h.entrySvc.SetTimeOff(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// RecordTempStop 登记临时离岗
// PUT /api/v1/entries/tempstop
func (h *EntryHandler) RecordTempStop(c *gin.Context) {
	var req dto.TempStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entry, err := h.entrySvc.RecordTempStop(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// ClearEntry 清空某日考勤（墓碑化，不删行）
// DELETE /api/v1/entries
func (h *EntryHandler) ClearEntry(c *gin.Context) {
	var req dto.ClearEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entry, err := h.entrySvc.ClearEntry(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// MonthlySummary 员工月度汇总视图（薪酬口径）
// GET /api/v1/entries/summary?user_id=1&year=2025&month=6
func (h *EntryHandler) MonthlySummary(c *gin.Context) {
	var req dto.MonthQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	summary, err := h.entrySvc.MonthlySummary(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, summary)
}

// handleEntryError 统一处理考勤记录模块业务错误
func (h *EntryHandler) handleEntryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		response.NotFound(c, 13001, "考勤记录不存在")
	case errors.Is(err, service.ErrEntryFinalized):
		response.BadRequest(c, 13002, "记录已审批锁定，禁止修改")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13003, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidClock):
		response.BadRequest(c, 13004, "时刻格式无效，应为 HH:MM")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 13005, "下班时间必须晚于上班时间")
	case errors.Is(err, service.ErrInvalidTimeOffCode):
		response.BadRequest(c, 13006, "无法识别的休假代码")
	case errors.Is(err, service.ErrShortDayReserved):
		response.BadRequest(c, 13007, "短工日标记由系统派生，不允许手工设置")
	case errors.Is(err, service.ErrNotOwnEntry):
		response.Forbidden(c, 13008, "员工只能操作本人的考勤记录")
	case errors.Is(err, service.ErrDayNotOpened):
		response.BadRequest(c, 13009, "当日尚未登记上班时间，无法登记临时离岗")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13010, "记录已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
