package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/service"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/response"
)

// CalendarHandler 节假日日历模块 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// ImportHolidays 从 ICS 日历导入某年度法定节假日
// POST /api/v1/calendar/holidays
//
// 文件上传: multipart/form-data, field="file"
// form 字段 year 指定目标年度，其余年份的日程忽略
func (h *CalendarHandler) ImportHolidays(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	year, err := strconv.Atoi(c.PostForm("year"))
	if err != nil || year <= 0 {
		response.BadRequest(c, 10001, "year 参数无效")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 15000, "请上传 ICS 日历文件")
		return
	}
	defer file.Close()

	result, err := h.calendarSvc.ImportNationalHolidays(c.Request.Context(), actor, year, file)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.Created(c, result)
}

// handleCalendarError 统一处理节假日日历模块业务错误
func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodInvalid):
		response.BadRequest(c, 15001, "年度无效")
	case errors.Is(err, service.ErrCalendarParse):
		response.BadRequest(c, 15002, "日历文件解析失败")
	case errors.Is(err, service.ErrCalendarEmpty):
		response.BadRequest(c, 15003, "日历中没有该年度可导入的节假日")
	case errors.Is(err, service.ErrHolidayImportDisabled):
		response.Forbidden(c, 15004, "节假日导入功能未启用")
	default:
		response.InternalError(c)
	}
}
