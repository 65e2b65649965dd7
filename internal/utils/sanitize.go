package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// CleanText strips any markup from user-supplied free text (usernames,
// pattern names) before it is stored or echoed back.
func CleanText(input string) string {
	return strings.TrimSpace(policy.Sanitize(input))
}

// NormalizeEmail case-normalizes an address so uniqueness checks and lookups
// agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
