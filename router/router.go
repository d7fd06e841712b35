package router

import (
	"log/slog"

	"gymdesk/config"
	"gymdesk/controllers"
	dbpkg "gymdesk/db"
	"gymdesk/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Initialize wires all routes and middlewares.
// Public: /health and /metrics. Everything under /api goes through Authorizer.
func Initialize(r *gin.Engine, cfg config.Configuration, db *gorm.DB, services *controllers.Services) {
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.CorsOrigins))
	r.Use(dbpkg.SetDBtoContext(db))
	r.Use(controllers.SetServices(services))

	r.GET("/health", controllers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(Logger(), Authorizer(cfg.ApiToken))

	// Jobs (cron externo ou manual)
	api.GET("/jobs", controllers.ListJobs)
	api.POST("/jobs/:name", controllers.RunJob)

	// Daily reports
	api.GET("/reports/daily/today", controllers.GetTodayReport)
	api.GET("/reports/daily/:date", controllers.GetDailyReport)
	api.POST("/reports/daily/:date", controllers.CreateDailyReport)

	// Finance
	api.GET("/finance/dashboard", controllers.GetDashboard)
	api.GET("/finance/summary", controllers.GetFinanceSummary)
	api.GET("/finance/months/:month", controllers.GetMonthlyProfit)
	api.GET("/finance/years/:year", controllers.GetYearBreakdown)
	api.GET("/finance/general", controllers.GetGeneralReport)

	// Members
	api.GET("/members", controllers.GetMembers)
	api.GET("/members/:id", controllers.GetMemberByID)
	api.POST("/members", controllers.CreateMember)
	api.PUT("/members/:id", controllers.UpdateMember)
	api.DELETE("/members/:id", controllers.DeleteMember)

	// Payments
	api.POST("/members/:id/payments", controllers.AddPayment)
	api.PUT("/payments/:id", controllers.UpdatePayment)

	slog.Info("routes initialized", "api_token", cfg.ApiToken != "")
}
