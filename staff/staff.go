// Package staff manages back-office accounts. Staff are identified by CPF.
package staff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gymdesk/models"
	"gymdesk/tools"

	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCPF    = errors.New("invalid CPF")
	ErrInvalidEmail  = errors.New("invalid email")
	ErrWeakPassword  = errors.New("weak password")
	ErrAlreadyExists = errors.New("cpf or email already registered")
)

type CreateInput struct {
	CPF         string
	Email       string
	FullName    string
	Password    string
	IsStaff     bool
	IsSuperuser bool
}

type Service struct {
	DB *gorm.DB
}

// Create validates and stores a staff account with a bcrypt password hash.
// The CPF may be masked ("123.456.789-09").
func (s *Service) Create(ctx context.Context, in CreateInput) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	cpf := tools.CleanCPF(in.CPF)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	user := models.User{CPF: cpf, Email: email, FullName: strings.TrimSpace(in.FullName)}
	if missing := user.MissingFields(); missing != "" {
		return models.User{}, fmt.Errorf("%s é obrigatório", missing)
	}
	if !tools.IsValidCPF(cpf) {
		return models.User{}, fmt.Errorf("%q: %w", in.CPF, ErrInvalidCPF)
	}
	if !tools.ValidateEmail(email) {
		return models.User{}, fmt.Errorf("%q: %w", in.Email, ErrInvalidEmail)
	}
	if msg := tools.CheckPassword(in.Password); msg != "" {
		return models.User{}, fmt.Errorf("%s: %w", msg, ErrWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.IsActive = true
	user.IsStaff = in.IsStaff || in.IsSuperuser
	user.IsSuperuser = in.IsSuperuser

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("cpf = ? OR email = ?", cpf, email).Count(&n).Error; err != nil {
			return fmt.Errorf("check staff user: %w", err)
		}
		if n > 0 {
			return ErrAlreadyExists
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create staff user: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// EnsureSuperuser creates the configured superuser on first boot. An account
// with the same CPF or email already present is left untouched.
func (s *Service) EnsureSuperuser(ctx context.Context, cpf, email, password string) (bool, error) {
	if strings.TrimSpace(cpf) == "" || strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}

	_, err := s.Create(ctx, CreateInput{CPF: cpf, Email: email, Password: password, IsSuperuser: true})
	if errors.Is(err, ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	slog.Info("staff: superuser created", "cpf", tools.CleanCPF(cpf))
	return true, nil
}
