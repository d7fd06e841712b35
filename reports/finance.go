package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymdesk/models"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

const (
	RecentActivityLimit = 20
	RecentPaymentsLimit = 12
)

// Finance answers the revenue questions of the home and finance screens.
type Finance struct {
	DB       *gorm.DB
	Location *time.Location
	Now      func() time.Time
}

type PeriodProfit struct {
	Year     int                 `json:"year"`
	Month    int                 `json:"month,omitempty"` // 0 for a whole year
	Profit   decimal.Decimal     `json:"profit"`
	Payments []models.PaymentRow `json:"payments"`
}

type MonthTotal struct {
	Month  int             `json:"month"`
	Profit decimal.Decimal `json:"profit"`
}

type YearBreakdown struct {
	Year      int             `json:"year"`
	Total     decimal.Decimal `json:"total"`
	Months    []MonthTotal    `json:"months"`
	BestMonth int             `json:"best_month,omitempty"` // first month with the highest profit, 0 for an empty year
}

type GeneralReport struct {
	ActiveMembers   int64               `json:"active_members"`
	InactiveMembers int64               `json:"inactive_members"`
	TotalRevenue    decimal.Decimal     `json:"total_revenue"`
	Payments        []models.PaymentRow `json:"payments"`
}

type Dashboard struct {
	ActiveMembers   int64                `json:"active_members"`
	InactiveMembers int64                `json:"inactive_members"`
	NewThisMonth    int64                `json:"new_this_month"`
	MonthProfit     decimal.Decimal      `json:"month_profit"`
	RecentActivity  []models.ActivityLog `json:"recent_activity"`
}

func (f *Finance) today() time.Time {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return models.Today(now(), f.Location)
}

// paymentRows lists payments dated in [from, to) with the member name
// (empty for orphaned payments). Zero bounds are open.
func paymentRows(db *gorm.DB, from, to time.Time, order string, limit int) ([]models.PaymentRow, error) {
	q := db.Table("payments").
		Select("payments.id, payments.member_id, COALESCE(members.full_name, '') AS member_name, payments.payment_date, payments.amount").
		Joins("LEFT JOIN members ON members.id = payments.member_id")
	if !from.IsZero() {
		q = q.Where("payments.payment_date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("payments.payment_date < ?", to)
	}
	if order == "" {
		order = "payments.payment_date asc, payments.id asc"
	}
	q = q.Order(order)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.PaymentRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return rows, nil
}

func sumRows(rows []models.PaymentRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	return total.Round(2)
}

// MonthlyProfit sums the payments of month in the current year.
func (f *Finance) MonthlyProfit(ctx context.Context, month int) (PeriodProfit, error) {
	return f.MonthProfitOf(ctx, f.today().Year(), month)
}

func (f *Finance) MonthProfitOf(ctx context.Context, year, month int) (PeriodProfit, error) {
	if month < 1 || month > 12 {
		return PeriodProfit{}, fmt.Errorf("month %d: %w", month, ErrInvalidMonth)
	}
	if err := ctx.Err(); err != nil {
		return PeriodProfit{}, err
	}

	from, to := models.MonthBounds(year, time.Month(month))
	rows, err := paymentRows(f.DB, from, to, "", 0)
	if err != nil {
		return PeriodProfit{}, err
	}
	return PeriodProfit{Year: year, Month: month, Profit: sumRows(rows), Payments: rows}, nil
}

func (f *Finance) CurrentMonthProfit(ctx context.Context) (PeriodProfit, error) {
	today := f.today()
	return f.MonthProfitOf(ctx, today.Year(), int(today.Month()))
}

func (f *Finance) CurrentYearProfit(ctx context.Context) (PeriodProfit, error) {
	if err := ctx.Err(); err != nil {
		return PeriodProfit{}, err
	}
	year := f.today().Year()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := paymentRows(f.DB, from, from.AddDate(1, 0, 0), "", 0)
	if err != nil {
		return PeriodProfit{}, err
	}
	return PeriodProfit{Year: year, Profit: sumRows(rows), Payments: rows}, nil
}

// YearBreakdown returns the twelve monthly totals of year.
func (f *Finance) YearBreakdown(ctx context.Context, year int) (YearBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return YearBreakdown{}, err
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := paymentRows(f.DB, from, from.AddDate(1, 0, 0), "", 0)
	if err != nil {
		return YearBreakdown{}, err
	}

	out := YearBreakdown{Year: year, Total: decimal.Zero, Months: make([]MonthTotal, 12)}
	for i := range out.Months {
		out.Months[i] = MonthTotal{Month: i + 1, Profit: decimal.Zero}
	}
	for _, r := range rows {
		m := &out.Months[int(r.PaymentDate.Month())-1]
		m.Profit = m.Profit.Add(r.Amount)
	}

	best := decimal.Zero
	for i := range out.Months {
		out.Months[i].Profit = out.Months[i].Profit.Round(2)
		out.Total = out.Total.Add(out.Months[i].Profit)
		if out.Months[i].Profit.GreaterThan(best) {
			best = out.Months[i].Profit
			out.BestMonth = i + 1
		}
	}
	return out, nil
}

// RecentPayments lists the latest payments by payment date.
func (f *Finance) RecentPayments(ctx context.Context, limit int) ([]models.PaymentRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = RecentPaymentsLimit
	}
	return paymentRows(f.DB, time.Time{}, time.Time{}, "payments.payment_date desc, payments.id desc", limit)
}

func (f *Finance) GeneralReport(ctx context.Context) (GeneralReport, error) {
	if err := ctx.Err(); err != nil {
		return GeneralReport{}, err
	}

	var out GeneralReport
	if err := f.DB.Model(&models.Member{}).Where("is_active = ?", true).Count(&out.ActiveMembers).Error; err != nil {
		return out, fmt.Errorf("count active members: %w", err)
	}
	if err := f.DB.Model(&models.Member{}).Where("is_active = ?", false).Count(&out.InactiveMembers).Error; err != nil {
		return out, fmt.Errorf("count inactive members: %w", err)
	}

	rows, err := paymentRows(f.DB, time.Time{}, time.Time{}, "", 0)
	if err != nil {
		return out, err
	}
	out.Payments = rows
	out.TotalRevenue = sumRows(rows)
	return out, nil
}

func (f *Finance) Dashboard(ctx context.Context) (Dashboard, error) {
	var out Dashboard

	profit, err := f.CurrentMonthProfit(ctx)
	if err != nil {
		return out, err
	}
	out.MonthProfit = profit.Profit

	if err := f.DB.Model(&models.Member{}).Where("is_active = ?", true).Count(&out.ActiveMembers).Error; err != nil {
		return out, fmt.Errorf("count active members: %w", err)
	}
	if err := f.DB.Model(&models.Member{}).Where("is_active = ?", false).Count(&out.InactiveMembers).Error; err != nil {
		return out, fmt.Errorf("count inactive members: %w", err)
	}

	// month boundaries in the business zone, compared against UTC timestamps
	today := f.today()
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)
	if err := f.DB.Model(&models.Member{}).
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Count(&out.NewThisMonth).Error; err != nil {
		return out, fmt.Errorf("count new members: %w", err)
	}

	if err := f.DB.Order("id desc").Limit(RecentActivityLimit).Find(&out.RecentActivity).Error; err != nil {
		return out, fmt.Errorf("recent activity: %w", err)
	}
	return out, nil
}
