// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address for storage and lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name collapses interior runs of whitespace and trims the ends.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims an account status string.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DeptID normalizes a department slug: lowercase, trimmed, spaces
// collapsed to single hyphens.
func DeptID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "-")
}

// QueryParam trims a raw URL query value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
