package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	controlChars    = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	unsafeNameChars = regexp.MustCompile(`[\\/:*?"<>|]+`)
)

// ValidateBusinessNumber checks a Korean business registration number
// (10 digits, separators ignored). An empty number is accepted.
func ValidateBusinessNumber(number string) error {
	digits := Digits(number)
	if number != "" && len(digits) != 10 {
		return fmt.Errorf("business number must have 10 digits: %s", number)
	}
	return nil
}

// Digits returns only the ASCII digits of s
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// SanitizeFileName makes name safe as a single path element. Hangul and
// other letters are kept; separators and reserved characters become "_".
func SanitizeFileName(name string) string {
	name = SanitizeString(name)
	name = strings.ReplaceAll(name, "..", "")
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		return "_"
	}
	return name
}
