package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPhone is returned when the input has fewer than 10 or more
// than 15 digits.
var ErrInvalidPhone = errors.New("phone number must have 10 to 15 digits")

// Phone holds the two renderings of a normalized phone number.
type Phone struct {
	Display string // "(555) 123-4567" for US numbers, otherwise E164
	E164    string // "+15551234567"
}

// NormalizePhone accepts digits-only or +-prefixed input. A 10-digit
// number is assumed US-domestic; an 11-digit number starting with 1 is
// treated the same after stripping the leading 1. Any other 10-15 digit
// input passes through as +<digits> without further validation.
func NormalizePhone(raw string) (Phone, error) {
	digits := sanitizePhone(raw)
	if len(digits) < 10 || len(digits) > 15 {
		return Phone{}, ErrInvalidPhone
	}

	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		display := fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
		return Phone{Display: display, E164: "+1" + digits}, nil
	}

	e164 := "+" + digits
	return Phone{Display: e164, E164: e164}, nil
}

// sanitizePhone strips everything but digits.
func sanitizePhone(value string) string {
	var sb strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
