package models

import "time"

// BillingMessage is one overdue-payment reminder for a member.
// There is at most one unsent row per member; it is marked sent by the
// billing dispatcher and never deleted while the member exists.
type BillingMessage struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID  int64      `gorm:"column:member_id;not null;index" json:"member_id"`
	CreatedOn time.Time  `gorm:"column:created_on;type:date;not null" json:"created_on"`
	IsSent    bool       `gorm:"column:is_sent;not null;index" json:"is_sent"`
	SentAt    *time.Time `gorm:"column:sent_at;type:date" json:"sent_at"`
}

// PendingBillingMessage is an unsent message joined with the member data
// needed to deliver it.
type PendingBillingMessage struct {
	ID       int64
	MemberID int64
	FullName string
	Phone    string
}
