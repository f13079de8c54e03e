package common

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var numberRegex = regexp.MustCompile(`[-+]?\d[\d,]*(?:\.\d+)?`)

// ParseDecimal reads the first number in text, ignoring thousands separators
// and any unit around it ("1,234.5 m2" -> 1234.5).
func ParseDecimal(text string) (decimal.Decimal, bool) {
	match := numberRegex.FindString(text)
	if match == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}

	return amount, true
}

// StripChars removes every character of chars from text.
func StripChars(text, chars string) string {
	if chars == "" {
		return text
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, text)
}

// BracketList formats page numbers like "[1, 3, 4]".
func BracketList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
