package utils

import (
	"html"
	"strings"
	"unicode"
)

// IsStrongPassword: не короче 8 символов, есть строчная, заглавная буква и цифра.
func IsStrongPassword(pw string) bool {
	if len([]rune(pw)) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// IsSafeString запрещает $ { } (защита от инъекций в фильтры).
func IsSafeString(s string) bool {
	return !strings.ContainsAny(s, "${}")
}

// SanitizeText экранирует HTML в пользовательском тексте.
func SanitizeText(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
