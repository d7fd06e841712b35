// Package dbtest opens throwaway sqlite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"gymdesk/db"
	"gymdesk/models"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Open creates a migrated sqlite database in a temp dir, closed on cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := gorm.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	conn.DB().SetMaxOpenConns(1)
	conn.LogMode(false)

	if err := db.Migrate(conn); err != nil {
		conn.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// Date is shorthand for a calendar date as stored in date columns.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Clock returns a Now func pinned to noon UTC of the given date.
func Clock(date time.Time) func() time.Time {
	y, m, d := date.Date()
	fixed := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return fixed }
}

// SaoPaulo loads the default business time zone (UTC-3).
func SaoPaulo(t testing.TB) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load time zone: %v", err)
	}
	return loc
}

// LocalClock returns a Now func pinned to hour:minute of date in loc.
func LocalClock(loc *time.Location, date time.Time, hour, minute int) func() time.Time {
	y, m, d := date.Date()
	fixed := time.Date(y, m, d, hour, minute, 0, 0, loc)
	return func() time.Time { return fixed }
}

// CreateMember inserts a member with the given email and active flag.
func CreateMember(t testing.TB, conn *gorm.DB, email string, active bool) models.Member {
	t.Helper()

	m := models.Member{
		Email:     email,
		FullName:  "Aluno " + email,
		Phone:     "85999990000",
		StartDate: Date(2024, time.January, 1),
		IsActive:  active,
	}
	if err := conn.Create(&m).Error; err != nil {
		t.Fatalf("create member %s: %v", email, err)
	}
	return m
}

// CreatePayment inserts a payment for memberID dated date.
func CreatePayment(t testing.TB, conn *gorm.DB, memberID int64, date time.Time, amount string) models.Payment {
	t.Helper()

	id := memberID
	p := models.Payment{
		MemberID:    &id,
		PaymentDate: date,
		Amount:      decimal.RequireFromString(amount),
	}
	if err := conn.Create(&p).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return p
}
