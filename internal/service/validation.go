package service

import (
	"encoding/json"
	"net/mail"
	"strconv"
	"strings"
)

const MinPasswordLength = 6

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return validation("Password must be at least 6 characters")
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func parseQuantity(n json.Number) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(n.String()), 10, 64)
	if err != nil || v < 0 {
		return 0, validation("Quantity must be a non-negative whole number")
	}
	return v, nil
}

func parsePrice(n json.Number) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
	if err != nil || v < 0 {
		return 0, validation("Price must be a non-negative number")
	}
	return v, nil
}
