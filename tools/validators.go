package tools

import (
	"regexp"
	"unicode/utf8"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`^\d{10,15}$`)
)

const (
	MinFullNameLen = 3
	MaxFullNameLen = 50
)

func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidatePhone expects a phone already passed through CleanPhone.
func ValidatePhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// CheckFullName returns "" when the name is acceptable, otherwise the reason.
func CheckFullName(name string) string {
	n := utf8.RuneCountInString(name)
	if n < MinFullNameLen {
		return "O nome completo deve ter pelo menos 3 caracteres."
	}
	if n > MaxFullNameLen {
		return "O nome completo deve ter menos de 50 caracteres."
	}
	return ""
}

const MinPasswordLen = 8

// CheckPassword returns "" when the password is acceptable, otherwise the reason.
func CheckPassword(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return "A senha deve ter pelo menos 8 caracteres."
	}
	return ""
}
