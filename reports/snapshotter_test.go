package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymdesk/db/dbtest"
	"gymdesk/models"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

var today = dbtest.Date(2026, time.March, 15)

func newSnapshotter(t *testing.T) (*Snapshotter, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	return &Snapshotter{DB: conn, Location: time.UTC, Now: dbtest.Clock(today)}, conn
}

func setCreatedAt(t *testing.T, conn *gorm.DB, m models.Member, at time.Time) {
	t.Helper()
	if err := conn.Model(&m).UpdateColumn("created_at", at).Error; err != nil {
		t.Fatalf("set created_at: %v", err)
	}
}

func TestCreateReport(t *testing.T) {
	s, conn := newSnapshotter(t)

	a := dbtest.CreateMember(t, conn, "a@x.com", true)
	b := dbtest.CreateMember(t, conn, "b@x.com", true)
	c := dbtest.CreateMember(t, conn, "c@x.com", false)
	setCreatedAt(t, conn, a, today.Add(9*time.Hour))
	setCreatedAt(t, conn, b, today.AddDate(0, 0, -3))
	setCreatedAt(t, conn, c, today.Add(23*time.Hour))

	dbtest.CreatePayment(t, conn, a.ID, today, "100.00")
	dbtest.CreatePayment(t, conn, b.ID, today, "59.90")
	dbtest.CreatePayment(t, conn, b.ID, today.AddDate(0, 0, -1), "100.00")

	report, err := s.CreateReport(context.Background(), today)
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	if report.ActiveStudents != 2 || report.PendingStudents != 1 || report.NewStudents != 2 {
		t.Errorf("counts = active %d pending %d new %d, want 2/1/2",
			report.ActiveStudents, report.PendingStudents, report.NewStudents)
	}
	if want := decimal.RequireFromString("159.90"); !report.DailyProfit.Equal(want) {
		t.Errorf("profit = %s, want %s", report.DailyProfit, want)
	}

	stored, err := s.GetReport(context.Background(), today)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if len(stored.Payments) != 2 {
		t.Errorf("linked payments = %d, want 2", len(stored.Payments))
	}
}

func TestCreateReportIsIdempotent(t *testing.T) {
	s, conn := newSnapshotter(t)
	m := dbtest.CreateMember(t, conn, "a@x.com", true)
	dbtest.CreatePayment(t, conn, m.ID, today, "100")

	first, err := s.CreateReport(context.Background(), today)
	if err != nil {
		t.Fatalf("first CreateReport: %v", err)
	}
	second, err := s.CreateReport(context.Background(), today)
	if err != nil {
		t.Fatalf("second CreateReport: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("report ids differ: %d vs %d", first.ID, second.ID)
	}
	if !first.DailyProfit.Equal(second.DailyProfit) || first.ActiveStudents != second.ActiveStudents {
		t.Errorf("reports differ: %+v vs %+v", first, second)
	}

	var reports, links int64
	conn.Model(&models.DailyReport{}).Count(&reports)
	conn.Table("daily_report_payments").Count(&links)
	if reports != 1 || links != 1 {
		t.Errorf("rows = %d reports, %d links, want 1 and 1", reports, links)
	}
}

func TestCreateReportOverwrites(t *testing.T) {
	s, conn := newSnapshotter(t)
	m := dbtest.CreateMember(t, conn, "a@x.com", true)
	p := dbtest.CreatePayment(t, conn, m.ID, today, "100")

	if _, err := s.CreateReport(context.Background(), today); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	// payment moved to another day and member went pending
	conn.Model(&p).Update("payment_date", today.AddDate(0, 0, -2))
	conn.Model(&m).Update("is_active", false)

	report, err := s.CreateReport(context.Background(), today)
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if !report.DailyProfit.IsZero() {
		t.Errorf("profit = %s, want 0", report.DailyProfit)
	}
	if report.ActiveStudents != 0 || report.PendingStudents != 1 {
		t.Errorf("counts = %d/%d, want 0/1", report.ActiveStudents, report.PendingStudents)
	}

	var links int64
	conn.Table("daily_report_payments").Count(&links)
	if links != 0 {
		t.Errorf("stale payment links = %d, want 0", links)
	}
}

func TestCreateReportDefaultsToToday(t *testing.T) {
	s, _ := newSnapshotter(t)

	report, err := s.CreateReport(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if !report.Date.Equal(today) {
		t.Errorf("date = %v, want %v", report.Date, today)
	}
	if !report.DailyProfit.IsZero() {
		t.Errorf("profit = %s, want 0", report.DailyProfit)
	}
}

func TestCreateReportRejectsFutureDate(t *testing.T) {
	s, conn := newSnapshotter(t)

	_, err := s.CreateReport(context.Background(), today.AddDate(0, 0, 1))
	if !errors.Is(err, ErrFutureReportDate) {
		t.Fatalf("err = %v, want ErrFutureReportDate", err)
	}

	var n int64
	conn.Model(&models.DailyReport{}).Count(&n)
	if n != 0 {
		t.Errorf("reports = %d, want 0", n)
	}
}

func TestCreateReportPastDate(t *testing.T) {
	s, conn := newSnapshotter(t)
	m := dbtest.CreateMember(t, conn, "a@x.com", true)
	day := today.AddDate(0, 0, -7)
	dbtest.CreatePayment(t, conn, m.ID, day, "80")

	report, err := s.CreateReport(context.Background(), day)
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if !report.DailyProfit.Equal(decimal.NewFromInt(80)) {
		t.Errorf("profit = %s, want 80", report.DailyProfit)
	}
}

func TestGetReportMissing(t *testing.T) {
	s, _ := newSnapshotter(t)

	_, err := s.GetReport(context.Background(), today)
	if !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("err = %v, want ErrReportNotFound", err)
	}
}

func TestTodayReportCreatesOnce(t *testing.T) {
	s, conn := newSnapshotter(t)

	first, err := s.TodayReport(context.Background())
	if err != nil {
		t.Fatalf("TodayReport: %v", err)
	}
	second, err := s.TodayReport(context.Background())
	if err != nil {
		t.Fatalf("TodayReport: %v", err)
	}
	if first.ID == 0 || first.ID != second.ID {
		t.Errorf("ids = %d, %d", first.ID, second.ID)
	}

	var n int64
	conn.Model(&models.DailyReport{}).Count(&n)
	if n != 1 {
		t.Errorf("reports = %d, want 1", n)
	}
}

func TestCreateReportBusinessTimeZone(t *testing.T) {
	conn := dbtest.Open(t)
	loc := dbtest.SaoPaulo(t)
	// 22:00 in São Paulo is already 01:00 of the 16th in UTC.
	s := &Snapshotter{DB: conn, Location: loc, Now: dbtest.LocalClock(loc, today, 22, 0)}

	lateNight := dbtest.CreateMember(t, conn, "late@x.com", true)
	earlyMorning := dbtest.CreateMember(t, conn, "early@x.com", true)
	dayBefore := dbtest.CreateMember(t, conn, "before@x.com", true)
	setCreatedAt(t, conn, lateNight, time.Date(2026, time.March, 15, 23, 30, 0, 0, loc).UTC())
	setCreatedAt(t, conn, earlyMorning, time.Date(2026, time.March, 15, 0, 30, 0, 0, loc).UTC())
	setCreatedAt(t, conn, dayBefore, time.Date(2026, time.March, 14, 22, 0, 0, 0, loc).UTC())

	report, err := s.CreateReport(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if !report.Date.Equal(today) {
		t.Errorf("report date = %s, want %s", report.Date.Format(time.DateOnly), today.Format(time.DateOnly))
	}
	if report.NewStudents != 2 {
		t.Errorf("new members = %d, want 2", report.NewStudents)
	}

	if _, err := s.CreateReport(context.Background(), today.AddDate(0, 0, 1)); !errors.Is(err, ErrFutureReportDate) {
		t.Errorf("report for the UTC date err = %v, want ErrFutureReportDate", err)
	}
}
