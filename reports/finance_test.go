package reports

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gymdesk/db/dbtest"
	"gymdesk/models"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

func newFinance(t *testing.T) (*Finance, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	return &Finance{DB: conn, Location: time.UTC, Now: dbtest.Clock(today)}, conn
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMonthlyProfit(t *testing.T) {
	f, conn := newFinance(t)
	m := dbtest.CreateMember(t, conn, "a@x.com", true)
	dbtest.CreatePayment(t, conn, m.ID, dbtest.Date(2026, time.February, 1), "100")
	dbtest.CreatePayment(t, conn, m.ID, dbtest.Date(2026, time.February, 28), "50.50")
	dbtest.CreatePayment(t, conn, m.ID, dbtest.Date(2026, time.March, 1), "70")
	dbtest.CreatePayment(t, conn, m.ID, dbtest.Date(2025, time.February, 10), "999")

	got, err := f.MonthlyProfit(context.Background(), 2)
	if err != nil {
		t.Fatalf("MonthlyProfit: %v", err)
	}
	if !got.Profit.Equal(dec("150.50")) {
		t.Errorf("profit = %s, want 150.50", got.Profit)
	}
	if len(got.Payments) != 2 {
		t.Errorf("payments = %d, want 2", len(got.Payments))
	}

	cur, err := f.CurrentMonthProfit(context.Background())
	if err != nil {
		t.Fatalf("CurrentMonthProfit: %v", err)
	}
	if !cur.Profit.Equal(dec("70")) {
		t.Errorf("current month profit = %s, want 70", cur.Profit)
	}
}

func TestMonthlyProfitInvalidMonth(t *testing.T) {
	f, _ := newFinance(t)
	for _, month := range []int{0, 13, -1} {
		if _, err := f.MonthlyProfit(context.Background(), month); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("month %d: err = %v, want ErrInvalidMonth", month, err)
		}
	}
}

func TestYearBreakdown(t *testing.T) {
	f, conn := newFinance(t)
	m := dbtest.CreateMember(t, conn, "a@x.com", true)
	dbtest.CreatePayment(t, conn, m.ID, dbtest.Date(2026, time.January, 5), "100")
	dbtest.CreatePayment(t, conn, m.ID, dbtest.Date(2026, time.March, 5), "100")
	dbtest.CreatePayment(t, conn, m.ID, dbtest.Date(2026, time.March, 9), "20")
	dbtest.CreatePayment(t, conn, m.ID, dbtest.Date(2027, time.January, 1), "500")

	got, err := f.YearBreakdown(context.Background(), 2026)
	if err != nil {
		t.Fatalf("YearBreakdown: %v", err)
	}
	if len(got.Months) != 12 {
		t.Fatalf("months = %d, want 12", len(got.Months))
	}
	if !got.Months[0].Profit.Equal(dec("100")) || !got.Months[2].Profit.Equal(dec("120")) {
		t.Errorf("jan = %s, mar = %s", got.Months[0].Profit, got.Months[2].Profit)
	}
	if !got.Months[11].Profit.IsZero() {
		t.Errorf("dec = %s, want 0", got.Months[11].Profit)
	}
	if got.BestMonth != 3 {
		t.Errorf("best month = %d, want 3", got.BestMonth)
	}
	if !got.Total.Equal(dec("220")) {
		t.Errorf("total = %s, want 220", got.Total)
	}

	year, err := f.CurrentYearProfit(context.Background())
	if err != nil {
		t.Fatalf("CurrentYearProfit: %v", err)
	}
	if !year.Profit.Equal(got.Total) {
		t.Errorf("current year = %s, breakdown total = %s", year.Profit, got.Total)
	}
}

func TestYearBreakdownEmptyYear(t *testing.T) {
	f, conn := newFinance(t)
	m := dbtest.CreateMember(t, conn, "a@x.com", true)
	dbtest.CreatePayment(t, conn, m.ID, dbtest.Date(2026, time.March, 5), "100")

	got, err := f.YearBreakdown(context.Background(), 2020)
	if err != nil {
		t.Fatalf("YearBreakdown: %v", err)
	}
	if got.BestMonth != 0 || !got.Total.IsZero() {
		t.Errorf("empty year: best month = %d, total = %s", got.BestMonth, got.Total)
	}

	b, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "best_month") {
		t.Errorf("empty year JSON carries best_month: %s", b)
	}
}

func TestGeneralReportIncludesOrphanedPayments(t *testing.T) {
	f, conn := newFinance(t)
	active := dbtest.CreateMember(t, conn, "a@x.com", true)
	dbtest.CreateMember(t, conn, "b@x.com", false)
	dbtest.CreatePayment(t, conn, active.ID, today, "100")

	orphan := models.Payment{PaymentDate: today.AddDate(0, -2, 0), Amount: dec("45.25")}
	if err := conn.Create(&orphan).Error; err != nil {
		t.Fatalf("create orphan payment: %v", err)
	}

	got, err := f.GeneralReport(context.Background())
	if err != nil {
		t.Fatalf("GeneralReport: %v", err)
	}
	if got.ActiveMembers != 1 || got.InactiveMembers != 1 {
		t.Errorf("members = %d/%d, want 1/1", got.ActiveMembers, got.InactiveMembers)
	}
	if !got.TotalRevenue.Equal(dec("145.25")) {
		t.Errorf("revenue = %s, want 145.25", got.TotalRevenue)
	}
	if len(got.Payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(got.Payments))
	}
	if got.Payments[0].MemberID != nil || got.Payments[0].MemberName != "" {
		t.Errorf("oldest payment should be the orphan, got %+v", got.Payments[0])
	}
	if got.Payments[1].MemberName != active.FullName {
		t.Errorf("member name = %q, want %q", got.Payments[1].MemberName, active.FullName)
	}
}

func TestRecentPayments(t *testing.T) {
	f, conn := newFinance(t)
	m := dbtest.CreateMember(t, conn, "a@x.com", true)
	for i := 0; i < 15; i++ {
		dbtest.CreatePayment(t, conn, m.ID, today.AddDate(0, 0, -i), "10")
	}

	got, err := f.RecentPayments(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentPayments: %v", err)
	}
	if len(got) != RecentPaymentsLimit {
		t.Fatalf("payments = %d, want %d", len(got), RecentPaymentsLimit)
	}
	if !models.DateOf(got[0].PaymentDate).Equal(today) {
		t.Errorf("first payment date = %v, want %v", got[0].PaymentDate, today)
	}
}

func TestDashboard(t *testing.T) {
	f, conn := newFinance(t)
	a := dbtest.CreateMember(t, conn, "a@x.com", true)
	b := dbtest.CreateMember(t, conn, "b@x.com", false)
	setCreatedAt(t, conn, a, today.AddDate(0, 0, -2))
	setCreatedAt(t, conn, b, today.AddDate(0, -2, 0))
	dbtest.CreatePayment(t, conn, a.ID, today, "100")

	for i := 0; i < 25; i++ {
		entry := models.ActivityLog{MemberID: &a.ID, EventType: models.ACTIVITY_EVENT_UPDATED, Description: "edit"}
		if err := conn.Create(&entry).Error; err != nil {
			t.Fatalf("create log: %v", err)
		}
	}

	got, err := f.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if got.ActiveMembers != 1 || got.InactiveMembers != 1 || got.NewThisMonth != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", got.ActiveMembers, got.InactiveMembers, got.NewThisMonth)
	}
	if !got.MonthProfit.Equal(dec("100")) {
		t.Errorf("month profit = %s, want 100", got.MonthProfit)
	}
	if len(got.RecentActivity) != RecentActivityLimit {
		t.Fatalf("recent activity = %d, want %d", len(got.RecentActivity), RecentActivityLimit)
	}
	if got.RecentActivity[0].ID < got.RecentActivity[1].ID {
		t.Error("recent activity should be newest first")
	}
}
