package models

import (
	"time"
)

/************************************************
/**** MARK: MEMBER STATUS ****/
/************************************************/
const MEMBER_STATUS_ACTIVE = "active"
const MEMBER_STATUS_INACTIVE = "inactive"

// Member representa um aluno da academia.
// IsActive é derivado dos pagamentos (ver activity.Engine) e só é setado
// diretamente quando a equipe edita o aluno.
type Member struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Email     string    `gorm:"not null;unique_index" json:"email" form:"email"`
	FullName  string    `gorm:"column:full_name;not null" json:"full_name" form:"full_name"`
	Phone     string    `gorm:"not null" json:"phone" form:"phone"`
	StartDate time.Time `gorm:"column:start_date;type:date" json:"start_date"`
	IsActive  bool      `gorm:"column:is_active;not null;index" json:"is_active" form:"is_active"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status is the label used by list filters and reports.
func (member Member) Status() string {
	if member.IsActive {
		return MEMBER_STATUS_ACTIVE
	}
	return MEMBER_STATUS_INACTIVE
}
