package models

import (
	"time"
)

// User is a staff account of the back office. Staff sign in with the CPF.
type User struct {
	ID           int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CPF          string    `gorm:"column:cpf;not null;unique_index" json:"cpf" form:"cpf"`
	Email        string    `gorm:"not null;unique_index" json:"email" form:"email"`
	FullName     string    `gorm:"column:full_name" json:"full_name" form:"full_name"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	IsStaff      bool      `gorm:"column:is_staff;not null" json:"is_staff"`
	IsSuperuser  bool      `gorm:"column:is_superuser;not null" json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (user User) MissingFields() string {
	if user.CPF == "" {
		return "cpf"
	} else if user.Email == "" {
		return "email"
	}
	return ""
}
