package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/dto"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/service"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/response"
)

// ConsolidationHandler 月度汇总模块 HTTP 处理器
type ConsolidationHandler struct {
	consolidationSvc service.ConsolidationService
}

// NewConsolidationHandler 创建 ConsolidationHandler
func NewConsolidationHandler(consolidationSvc service.ConsolidationService) *ConsolidationHandler {
	return &ConsolidationHandler{consolidationSvc: consolidationSvc}
}

// Consolidate 触发某期间汇总作业
// POST /api/v1/consolidations
func (h *ConsolidationHandler) Consolidate(c *gin.Context) {
	var req dto.ConsolidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.consolidationSvc.Consolidate(c.Request.Context(), actor, req.Year, req.Month)
	if err != nil {
		h.handleConsolidationError(c, err)
		return
	}

	response.OK(c, result)
}

// GetConsolidated 获取某期间汇总集
// GET /api/v1/consolidations?year=2025&month=6
func (h *ConsolidationHandler) GetConsolidated(c *gin.Context) {
	var req dto.MonthQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	entries, err := h.consolidationSvc.GetConsolidated(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.handleConsolidationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// ListRuns 查询汇总运行历史
// GET /api/v1/consolidations/runs?year=2025&month=6&page=1&page_size=20
func (h *ConsolidationHandler) ListRuns(c *gin.Context) {
	var req dto.RunListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	runs, total, err := h.consolidationSvc.ListRuns(c.Request.Context(), &req)
	if err != nil {
		h.handleConsolidationError(c, err)
		return
	}

	response.OKPage(c, runs, total, req.GetPage(), req.GetPageSize())
}

// ApprovePeriod 期末审批锁定
// POST /api/v1/consolidations/approve
func (h *ConsolidationHandler) ApprovePeriod(c *gin.Context) {
	var req dto.ApprovePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.consolidationSvc.ApprovePeriod(c.Request.Context(), actor, req.Year, req.Month)
	if err != nil {
		h.handleConsolidationError(c, err)
		return
	}

	response.OK(c, result)
}

// handleConsolidationError 统一处理月度汇总模块业务错误
func (h *ConsolidationHandler) handleConsolidationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodInvalid):
		response.BadRequest(c, 14001, "无效的汇总期间")
	case errors.Is(err, service.ErrPeriodInFuture):
		response.BadRequest(c, 14002, "不能汇总未来月份")
	case errors.Is(err, service.ErrBaseUnavailable):
		response.Error(c, http.StatusInternalServerError, 14003, "汇总底稿不可用，汇总作业中止")
	case errors.Is(err, service.ErrNothingToApprove):
		response.BadRequest(c, 14004, "该期间没有可审批的汇总记录")
	default:
		response.InternalError(c)
	}
}
