package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentAmount is the monthly fee suggested when staff register a payment.
var DefaultPaymentAmount = decimal.NewFromInt(100)

// Payment is a single monthly fee paid by a member.
// MemberID becomes NULL when the member is deleted; the payment is kept for
// revenue reports.
type Payment struct {
	ID          int64           `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID    *int64          `gorm:"column:member_id;index" json:"member_id"`
	PaymentDate time.Time       `gorm:"column:payment_date;type:date;not null;index" json:"payment_date"`
	Amount      decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PaymentRow is a payment joined with the owning member's name, as listed in
// finance screens and reports.
type PaymentRow struct {
	ID          int64           `json:"id"`
	MemberID    *int64          `json:"member_id"`
	MemberName  string          `json:"member_name"`
	PaymentDate time.Time       `json:"payment_date"`
	Amount      decimal.Decimal `json:"amount"`
}

// Orphaned reports whether the owning member has been deleted.
func (p Payment) Orphaned() bool {
	return p.MemberID == nil
}
