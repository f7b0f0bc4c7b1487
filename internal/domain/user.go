package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"
)

// User owns wallets, categories, transactions and loans.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrEmailTaken       = errors.New("email already registered")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooWeak  = errors.New("password does not meet requirements")
	ErrInvalidUserInput = errors.New("invalid user input")
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword requires a mixed-case password with a digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return ErrPasswordTooWeak
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if !upper || !lower || !digit {
		return ErrPasswordTooWeak
	}

	return nil
}
