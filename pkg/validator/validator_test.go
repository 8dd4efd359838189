package validator_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postcard/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("to", "Mia"),
			validator.MaxRunes("message", "See you soon", 500),
			validator.EmailShape("email", "mia@example.com"),
		)
		require.NoError(t, err)
	})

	t.Run("collects failures in order", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("to", "   "),
			validator.RequiredString("from", "Sam"),
			validator.EmailShape("email", "nope"),
		)
		require.Error(t, err)

		ve := validator.ExtractValidationErrors(err)
		require.Len(t, ve, 2)
		require.Equal(t, "to", ve[0].Field)
		require.Equal(t, "email", ve[1].Field)
		require.True(t, ve.Has("email"))
		require.False(t, ve.Has("from"))
		require.Equal(t, "field is required", ve.First("to"))
		require.Contains(t, err.Error(), "email: must be a valid email address")
	})

	t.Run("survives wrapping", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("bind: %w", validator.Apply(validator.RequiredString("to", "")))
		require.True(t, validator.IsValidationError(err))
		require.Len(t, validator.ExtractValidationErrors(err), 1)
	})

	t.Run("plain errors are not validation errors", func(t *testing.T) {
		t.Parallel()
		require.False(t, validator.IsValidationError(errors.New("boom")))
		require.False(t, validator.IsValidationError(nil))
		require.Nil(t, validator.ExtractValidationErrors(nil))
	})
}

func TestMaxRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		max   int
		ok    bool
	}{
		{"empty", "", 3, true},
		{"at limit", "abc", 3, true},
		{"over limit", "abcd", 3, false},
		{"multibyte counted as runes", "💌💌💌", 3, true},
		{"long message", strings.Repeat("a", 501), 500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.ok, validator.MaxRunes("message", tt.value, tt.max).Check())
		})
	}
}

func TestIsEmailShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		ok    bool
	}{
		{"a@b.co", true},
		{"mia.rose+cards@mail.example.org", true},
		{"not-an-email", false},
		{"", false},
		{"a@b", false},
		{"@b.co", false},
		{"a b@c.de", false},
		{"a@b@c.de", false},
		{"a@b.", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.ok, validator.IsEmailShape(tt.email))
		})
	}
}
