// Package reports builds the daily snapshots and the finance summaries shown
// on the back-office home and finance screens.
package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymdesk/metrics"
	"gymdesk/models"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

var (
	ErrFutureReportDate = errors.New("cannot create a report for a future date")
	ErrReportNotFound   = errors.New("daily report not found")
)

type Snapshotter struct {
	DB       *gorm.DB
	Location *time.Location
	Now      func() time.Time
	Metrics  *metrics.Metrics
}

func (s *Snapshotter) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return models.Today(now(), s.Location)
}

// CreateReport computes (or recomputes) the snapshot for date. A zero date
// means today. Counts, revenue and the payment list are all overwritten.
func (s *Snapshotter) CreateReport(ctx context.Context, date time.Time) (models.DailyReport, error) {
	if err := ctx.Err(); err != nil {
		return models.DailyReport{}, err
	}

	today := s.today()
	if date.IsZero() {
		date = today
	}
	date = models.DateOf(date)
	if date.After(today) {
		return models.DailyReport{}, fmt.Errorf("%s: %w", date.Format(time.DateOnly), ErrFutureReportDate)
	}

	var report models.DailyReport
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		report, err = s.snapshot(tx, date)
		return err
	})
	if err != nil {
		return models.DailyReport{}, err
	}

	s.Metrics.ReportGenerated()
	slog.Info("reports: daily report saved",
		"date", date.Format(time.DateOnly),
		"active", report.ActiveStudents,
		"pending", report.PendingStudents,
		"new", report.NewStudents,
		"profit", report.DailyProfit.StringFixed(2),
	)
	return report, nil
}

func (s *Snapshotter) snapshot(tx *gorm.DB, date time.Time) (models.DailyReport, error) {
	var existing []models.DailyReport
	if err := tx.Where("date = ?", date).Limit(1).Find(&existing).Error; err != nil {
		return models.DailyReport{}, fmt.Errorf("load report %s: %w", date.Format(time.DateOnly), err)
	}
	report := models.DailyReport{Date: date}
	if len(existing) > 0 {
		report = existing[0]
	}

	if err := tx.Model(&models.Member{}).Where("is_active = ?", true).Count(&report.ActiveStudents).Error; err != nil {
		return report, fmt.Errorf("count active members: %w", err)
	}
	if err := tx.Model(&models.Member{}).Where("is_active = ?", false).Count(&report.PendingStudents).Error; err != nil {
		return report, fmt.Errorf("count pending members: %w", err)
	}

	start, end := models.DayBounds(date, s.Location)
	if err := tx.Model(&models.Member{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&report.NewStudents).Error; err != nil {
		return report, fmt.Errorf("count new members: %w", err)
	}

	var payments []models.Payment
	if err := tx.Where("payment_date = ?", date).Order("id asc").Find(&payments).Error; err != nil {
		return report, fmt.Errorf("payments of %s: %w", date.Format(time.DateOnly), err)
	}
	report.DailyProfit = sumPayments(payments)
	report.Payments = nil

	if err := tx.Set("gorm:save_associations", false).Save(&report).Error; err != nil {
		return report, fmt.Errorf("save report: %w", err)
	}

	assoc := tx.Model(&report).Association("Payments")
	if len(payments) > 0 {
		assoc = assoc.Replace(payments)
	} else {
		assoc = assoc.Clear()
	}
	if assoc.Error != nil {
		return report, fmt.Errorf("link report payments: %w", assoc.Error)
	}

	report.Payments = payments
	return report, nil
}

// GetReport returns the stored snapshot for date with its payments.
func (s *Snapshotter) GetReport(ctx context.Context, date time.Time) (models.DailyReport, error) {
	if err := ctx.Err(); err != nil {
		return models.DailyReport{}, err
	}

	date = models.DateOf(date)
	var report models.DailyReport
	err := s.DB.Preload("Payments", func(db *gorm.DB) *gorm.DB {
		return db.Order("payments.id asc")
	}).Where("date = ?", date).First(&report).Error
	if gorm.IsRecordNotFoundError(err) {
		return report, fmt.Errorf("%s: %w", date.Format(time.DateOnly), ErrReportNotFound)
	}
	if err != nil {
		return report, fmt.Errorf("load report %s: %w", date.Format(time.DateOnly), err)
	}
	return report, nil
}

// TodayReport returns today's snapshot, creating it when the job has not run yet.
func (s *Snapshotter) TodayReport(ctx context.Context) (models.DailyReport, error) {
	report, err := s.GetReport(ctx, s.today())
	if errors.Is(err, ErrReportNotFound) {
		return s.CreateReport(ctx, time.Time{})
	}
	return report, err
}

func sumPayments(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total.Round(2)
}
