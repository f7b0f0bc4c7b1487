package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
)

// Validation constants
const (
	MaxNameLength    = 100
	MaxNoteLength    = 500
	DefaultPageSize  = 20
	MaxPageSize      = 100
	DefaultCurrency  = "USD"
	minNameCharacter = 1
)

// ValidateAmount rejects non-positive and out of range amounts.
func ValidateAmount(field string, amount Money) error {
	if !amount.IsPositive() {
		return NewValidationError(ErrInvalidAmount, field, "must be positive")
	}

	if amount.GreaterThan(maxAmount) {
		return NewValidationError(ErrInvalidAmount, field, "exceeds maximum allowed")
	}

	return nil
}

// ValidateName validates wallet, category and counterparty names.
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < minNameCharacter {
		return NewValidationError(ErrInvalidInput, field, "cannot be empty")
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return NewValidationError(ErrInvalidInput, field, "is too long")
	}

	return nil
}

// ValidateNote validates free-form notes.
func ValidateNote(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return NewValidationError(ErrInvalidInput, "note", "is too long")
	}
	return nil
}

// ValidateCurrency validates an ISO 4217 code against the go-money registry.
func ValidateCurrency(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if money.GetCurrency(code) == nil {
		return NewValidationError(ErrInvalidInput, "currency", code+" is not a known currency")
	}
	return nil
}

// ValidatePagination clamps limit and offset into the supported window.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
