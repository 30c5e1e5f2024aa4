package submission

import (
	"strings"
	"unicode"
)

// ValidNHSNumber checks the ten digit NHS number modulus 11 check digit.
// Repeated-digit numbers such as 4444444444 pass the checksum and are not
// rejected here.
func ValidNHSNumber(nnn string) bool {
	if len(nnn) != 10 {
		return false
	}
	digits := make([]int, 10)
	sum := 0
	for i, c := range nnn {
		if !unicode.IsDigit(c) {
			return false
		}
		digits[i] = int(c - '0')
		if i < 9 {
			sum += digits[i] * (10 - i)
		}
	}
	check := 11 - (sum % 11)
	if check == 11 {
		check = 0
	}
	return check != 10 && check == digits[9]
}

// FormatNHSNumber renders an NHS number in the usual 3-3-4 grouping,
// e.g. 0123456789 -> 012 345 6789.
func FormatNHSNumber(nnn string) string {
	if len(nnn) != 10 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(nnn[0:3])
	sb.WriteString(" ")
	sb.WriteString(nnn[3:6])
	sb.WriteString(" ")
	sb.WriteString(nnn[6:])
	return sb.String()
}
