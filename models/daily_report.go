package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport is the per-date snapshot of membership and revenue counters.
// Date is unique; regenerating a date overwrites every field.
type DailyReport struct {
	ID              int64           `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Date            time.Time       `gorm:"column:date;type:date;not null;unique_index" json:"date"`
	ActiveStudents  int64           `gorm:"column:active_students;not null" json:"active_students"`
	PendingStudents int64           `gorm:"column:pending_students;not null" json:"pending_students"`
	NewStudents     int64           `gorm:"column:new_students;not null" json:"new_students"`
	DailyProfit     decimal.Decimal `gorm:"column:daily_profit;type:numeric(10,2);not null" json:"daily_profit"`
	Payments        []Payment       `gorm:"many2many:daily_report_payments;association_autoupdate:false;association_autocreate:false" json:"payments"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
