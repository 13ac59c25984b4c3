package validator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrRequired      = errors.New("missing required fields")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrInvalidAmount = errors.New("amount must be greater than 0")
	ErrWholeAmount   = errors.New("amount must be a whole number")
	ErrTooLong       = errors.New("field too long")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const maxFieldLen = 255

// 簡易メール形式をチェック
func IsEmailLike(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

func Required(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return ErrRequired
		}
	}
	return nil
}

func MaxLen(values ...string) error {
	for _, v := range values {
		if len(v) > maxFieldLen {
			return ErrTooLong
		}
	}
	return nil
}

func Email(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrRequired
	}
	if !IsEmailLike(s) {
		return ErrInvalidEmail
	}
	return nil
}

func PositiveAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// VNDは小数なし。振込で送れない金額を受け付けない
func WholeAmount(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(0)) {
		return ErrWholeAmount
	}
	return nil
}

// 空文字はnilにする（任意項目）
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
