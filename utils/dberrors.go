package utils

import "strings"

// IsUniqueViolation reports whether err is a duplicate key error
// (works with both PostgreSQL and SQLite)
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "unique")
}
