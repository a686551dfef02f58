package policy_test

import (
	"errors"
	"testing"

	"github.com/avelasq/authgate/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reasonOf(t *testing.T, err error) policy.Reason {
	t.Helper()

	var v *policy.Violation
	require.True(t, errors.As(err, &v), "expected *policy.Violation, got %v", err)
	return v.Reason
}

func TestValidate_Accepts(t *testing.T) {
	cases := []string{
		"Abcdefg1!",          // boundary: 9 characters
		"Sup3r$ecretPhrase",  // long mixed
		`Quoted"Pass9`,       // double quote is in the special set
		"Aa1<>{}|longenough",
	}

	for _, password := range cases {
		assert.NoError(t, policy.Validate(password), "password %q", password)
	}
}

func TestValidate_TooShort(t *testing.T) {
	// Length <= 8 always fails first, regardless of content.
	cases := []string{
		"",
		"Abcdef1!", // exactly 8: strictly-greater-than required
		"A1!a",
		"aaaaaaaa",
		"AAAAAAAA",
	}

	for _, password := range cases {
		err := policy.Validate(password)
		require.Error(t, err, "password %q", password)
		assert.Equal(t, policy.ReasonTooShort, reasonOf(t, err), "password %q", password)
	}
}

func TestValidate_FirstFailureWins(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     policy.Reason
	}{
		{"no uppercase", "abcdefg1!", policy.ReasonNoUppercase},
		{"no lowercase", "ABCDEFG1!", policy.ReasonNoLowercase},
		{"no digit", "Abcdefgh!", policy.ReasonNoDigit},
		{"no special", "Abcdefgh1", policy.ReasonNoSpecialChar},
		// multiple rules broken: the earliest rule in order reports
		{"no upper and no digit", "abcdefgh!", policy.ReasonNoUppercase},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Validate(tc.password)
			require.Error(t, err)
			assert.Equal(t, tc.want, reasonOf(t, err))
		})
	}
}

func TestValidate_LiteralMembership(t *testing.T) {
	// Characters outside the fixed special set do not satisfy rule 5,
	// and non-ASCII letters do not satisfy the letter rules.
	err := policy.Validate("Abcdefgh1-") // '-' is not in the set
	require.Error(t, err)
	assert.Equal(t, policy.ReasonNoSpecialChar, reasonOf(t, err))

	err = policy.Validate("Äbcdefgh1!") // 'Ä' is not [A-Z]
	require.Error(t, err)
	assert.Equal(t, policy.ReasonNoUppercase, reasonOf(t, err))
}

func TestValidate_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		require.NoError(t, policy.Validate("Abcdefg1!"))
	}
}
