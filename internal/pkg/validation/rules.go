package validation

import (
	"regexp"
	"time"
)

// maxEmailLength is the longest address accepted at login and seeding
const maxEmailLength = 254

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// IsAdmissionYear reports whether s is a four digit year
func IsAdmissionYear(s string) bool {
	return yearPattern.MatchString(s)
}

// IsEmail reports whether s looks like an email address
func IsEmail(s string) bool {
	return s != "" && len(s) <= maxEmailLength && emailPattern.MatchString(s)
}

// IsDate reports whether s is a calendar date in YYYY-MM-DD form
func IsDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
