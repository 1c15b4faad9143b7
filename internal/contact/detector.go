// Package contact finds e-mail addresses and phone numbers in free text.
// Detection is a heuristic used to trigger a notification, not validation.
package contact

import (
	"regexp"
)

const (
	minPhoneDigits = 8
	maxPhoneDigits = 11
)

var (
	emailPattern     = regexp.MustCompile(`[^\s@]+@[^\s@]+\.[^\s@]+`)
	emailStrict      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern     = regexp.MustCompile(`(?:\+?(\d{1,3}))?[-. (]*(\d{2,3})?[-. )]*(\d{3,5})[-. ]*(\d{4})`)
	nonDigitsPattern = regexp.MustCompile(`\D`)
)

// Info holds whatever contact details were found
type Info struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Found reports whether any contact detail was detected
func (i Info) Found() bool {
	return i.Email != "" || i.Phone != ""
}

// ExtractEmail returns the first e-mail address in text
func ExtractEmail(text string) (string, bool) {
	match := emailPattern.FindString(text)
	if match == "" || !emailStrict.MatchString(match) {
		return "", false
	}
	return match, true
}

// ExtractPhone returns the digits of the first phone-like sequence in text.
// Only sequences with 8 to 11 digits are accepted.
func ExtractPhone(text string) (string, bool) {
	match := phonePattern.FindString(text)
	if match == "" {
		return "", false
	}

	digits := nonDigitsPattern.ReplaceAllString(match, "")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", false
	}
	return digits, true
}

// Detect runs both extractors
func Detect(text string) Info {
	var info Info
	info.Email, _ = ExtractEmail(text)
	info.Phone, _ = ExtractPhone(text)
	return info
}
