package models

import "time"

/************************************************
/**** MARK: ACTIVITY EVENT TYPES ****/
/************************************************/
const ACTIVITY_EVENT_CREATED = "created"
const ACTIVITY_EVENT_UPDATED = "updated"
const ACTIVITY_EVENT_DELETED = "deleted"
const ACTIVITY_EVENT_PAYMENT = "payment"
const ACTIVITY_EVENT_PENDING = "pending"

// ActivityLog registra o que aconteceu com os alunos (cadastro, edição,
// pagamento, exclusão, pendência). Mostrado no dashboard.
type ActivityLog struct {
	ID          int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID    *int64    `gorm:"column:member_id;index" json:"member_id"`
	EventType   string    `gorm:"column:event_type;not null" json:"event_type"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
