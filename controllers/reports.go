package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func reportServices(c *gin.Context) (*Services, bool) {
	s := ServicesInstance(c)
	if s == nil || s.Reports == nil || s.Finance == nil {
		RespondError(c, "relatórios não configurados", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

// GET /api/reports/daily/today
func GetTodayReport(c *gin.Context) {
	s, ok := reportServices(c)
	if !ok {
		return
	}
	report, err := s.Reports.TodayReport(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"report": report})
}

// GET /api/reports/daily/:date
func GetDailyReport(c *gin.Context) {
	date, ok := ParamDate(c, "date")
	if !ok {
		return
	}
	s, ok := reportServices(c)
	if !ok {
		return
	}
	report, err := s.Reports.GetReport(c.Request.Context(), date)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"report": report})
}

// POST /api/reports/daily/:date
// Recomputes the snapshot of a past day.
func CreateDailyReport(c *gin.Context) {
	date, ok := ParamDate(c, "date")
	if !ok {
		return
	}
	s, ok := reportServices(c)
	if !ok {
		return
	}
	report, err := s.Reports.CreateReport(c.Request.Context(), date)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"report": report})
}

// GET /api/finance/dashboard
func GetDashboard(c *gin.Context) {
	s, ok := reportServices(c)
	if !ok {
		return
	}
	dash, err := s.Finance.Dashboard(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"dashboard": dash})
}

// GET /api/finance/summary
// Same numbers as the finance screen: year and month totals, the twelve
// months of the current year and the latest payments.
func GetFinanceSummary(c *gin.Context) {
	s, ok := reportServices(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	year, err := s.Finance.CurrentYearProfit(ctx)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	month, err := s.Finance.CurrentMonthProfit(ctx)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	breakdown, err := s.Finance.YearBreakdown(ctx, year.Year)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	recent, err := s.Finance.RecentPayments(ctx, 0)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	RespondSuccess(c, gin.H{
		"current_year_profit":  year.Profit,
		"current_month_profit": month.Profit,
		"months":               breakdown.Months,
		"best_month":           breakdown.BestMonth,
		"recent_payments":      recent,
	})
}

// GET /api/finance/months/:month
func GetMonthlyProfit(c *gin.Context) {
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		RespondError(c, "month inválido", http.StatusBadRequest)
		return
	}
	s, ok := reportServices(c)
	if !ok {
		return
	}
	profit, err := s.Finance.MonthlyProfit(c.Request.Context(), month)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"profit": profit})
}

// GET /api/finance/years/:year
func GetYearBreakdown(c *gin.Context) {
	year, ok := ParamInt(c, "year")
	if !ok {
		return
	}
	s, ok := reportServices(c)
	if !ok {
		return
	}
	breakdown, err := s.Finance.YearBreakdown(c.Request.Context(), year)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"breakdown": breakdown})
}

// GET /api/finance/general
func GetGeneralReport(c *gin.Context) {
	s, ok := reportServices(c)
	if !ok {
		return
	}
	report, err := s.Finance.GeneralReport(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"report": report})
}
