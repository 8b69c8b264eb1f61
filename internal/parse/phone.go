package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var nonDigitRe = regexp.MustCompile(`\D`)

const (
	minPhoneDigits = 8
	maxPhoneDigits = 15 // E.164
)

// NormalizePhone strips everything but digits and prefixes countryCode when it is missing.
func NormalizePhone(raw, countryCode string) (string, error) {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if digits == "" {
		return "", fmt.Errorf("phone %q has no digits", raw)
	}

	cc := nonDigitRe.ReplaceAllString(countryCode, "")
	if cc != "" && !strings.HasPrefix(digits, cc) {
		digits = cc + digits
	}

	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", fmt.Errorf("phone %q must have between %d and %d digits", raw, minPhoneDigits, maxPhoneDigits)
	}
	return digits, nil
}

// WhatsAppAddress formats a number as a Twilio WhatsApp address ("whatsapp:+5511...").
func WhatsAppAddress(number string) string {
	s := strings.TrimSpace(number)
	s = strings.TrimPrefix(s, "whatsapp:")
	s = strings.TrimPrefix(s, "+")
	return "whatsapp:+" + s
}
