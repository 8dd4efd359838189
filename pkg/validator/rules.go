package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// emailShape accepts local@domain.tld: no whitespace, exactly one @,
// and at least one dot after it.
var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RequiredString fails when the value is empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MaxRunes fails when the value is longer than max characters.
func MaxRunes(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters long", max),
		},
	}
}

// EmailShape fails unless the value looks like local@domain.tld.
// It is a shape check only; deliverability is the provider's concern.
func EmailShape(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return IsEmailShape(value)
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// IsEmailShape reports whether s looks like local@domain.tld.
func IsEmailShape(s string) bool {
	return emailShape.MatchString(s)
}
