package utils

import (
	"regexp"
	"strings"
)

var (
	phoneRegex    = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
	nonDigitRegex = regexp.MustCompile(`[^\d]`)
)

const DefaultCountryCode = "+55"

// FormatPhoneE164 converts a locally typed number to E.164. Numbers that
// already carry a leading + keep their country code. The second return value
// is false when the result is not a plausible E.164 number.
func FormatPhoneE164(phone, countryCode string) (string, bool) {
	trimmed := strings.TrimSpace(phone)
	international := strings.HasPrefix(trimmed, "+") || strings.HasPrefix(trimmed, "00")

	digits := nonDigitRegex.ReplaceAllString(trimmed, "")
	digits = strings.TrimPrefix(digits, "00")

	if !international {
		digits = strings.TrimLeft(digits, "0")
		digits = strings.TrimPrefix(countryCode, "+") + digits
	}

	formatted := "+" + digits
	return formatted, phoneRegex.MatchString(formatted)
}
