package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thlhody/GraphicDepartmentv30-sub004/config"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/api/handler"
	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/api/middleware"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	// 认证在上游网关完成，所有业务路由只校验身份头
	v1 := r.Group("/api/v1")
	v1.Use(middleware.ActorContext())
	if cfg.Server.RateLimit > 0 {
		v1.Use(middleware.RateLimit(rdb, cfg.Server.RateLimit, cfg.Server.RateWindow))
	}
	{
		// 考勤记录模块
		entries := v1.Group("/entries")
		{
			entries.GET("", h.Entry.GetMonth)
			entries.GET("/summary", h.Entry.MonthlySummary)
			entries.PUT("/times", h.Entry.SetTimes)     // 员工改自报集，管理员改汇总集（Service 层分流）
			entries.PUT("/timeoff", h.Entry.SetTimeOff)
			entries.PUT("/tempstop", h.Entry.RecordTempStop)
			entries.DELETE("", h.Entry.ClearEntry)
		}

		// 月度汇总模块
		consolidations := v1.Group("/consolidations")
		{
			consolidations.POST("", middleware.RequireAdmin(), h.Consolidation.Consolidate)
			consolidations.GET("", middleware.RequireAdmin(), h.Consolidation.GetConsolidated)
			consolidations.GET("/runs", middleware.RequireAdmin(), h.Consolidation.ListRuns)
			consolidations.POST("/approve", middleware.RequireAdmin(), h.Consolidation.ApprovePeriod)
		}

		// 员工名册模块
		employees := v1.Group("/employees")
		{
			employees.POST("", middleware.RequireAdmin(), h.Employee.CreateEmployee)
			employees.GET("", middleware.RequireAdmin(), h.Employee.ListEmployees)
			employees.GET("/:id", middleware.RequireAdmin(), h.Employee.GetEmployee)
			employees.PUT("/:id", middleware.RequireAdmin(), h.Employee.UpdateEmployee)
			employees.DELETE("/:id", middleware.RequireAdmin(), h.Employee.DeactivateEmployee)
			employees.GET("/:id/balance", h.Employee.GetBalance) // 员工本人或管理员（Service 层鉴权）
			employees.PUT("/:id/balance", middleware.RequireAdmin(), h.Employee.AdjustBalance)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/consolidated", middleware.RequireAdmin(), h.Export.ExportConsolidated)
		}

		// 节假日日历模块
		calendar := v1.Group("/calendar")
		{
			calendar.POST("/holidays", middleware.RequireAdmin(), h.Calendar.ImportHolidays)
		}
	}

	return r
}
