// Package policy checks candidate passwords against the account composition
// rules. Validation is pure: no state, no I/O, same answer for the same input.
package policy

import (
	"strings"
	"unicode/utf8"
)

// SpecialChars is the accepted special-character set. Membership is literal:
// nothing outside this set counts, and the letter/digit rules match ASCII
// classes only.
const SpecialChars = `!@#$%^&*(),.?":{}|<>`

// minimum length is strict: a password of exactly 8 characters is rejected.
const minLength = 8

// Reason identifies which rule a password failed.
type Reason string

const (
	ReasonTooShort      Reason = "too short"
	ReasonNoUppercase   Reason = "missing uppercase"
	ReasonNoLowercase   Reason = "missing lowercase"
	ReasonNoDigit       Reason = "missing digit"
	ReasonNoSpecialChar Reason = "missing special character"
)

// Violation is returned when a password fails a rule. Message is the
// user-facing text surfaced by the API.
type Violation struct {
	Reason  Reason
	Message string
}

func (v *Violation) Error() string {
	return v.Message
}

var violations = map[Reason]*Violation{
	ReasonTooShort:      {Reason: ReasonTooShort, Message: "Password must be more than 8 characters."},
	ReasonNoUppercase:   {Reason: ReasonNoUppercase, Message: "Password must contain at least one uppercase letter."},
	ReasonNoLowercase:   {Reason: ReasonNoLowercase, Message: "Password must contain at least one lowercase letter."},
	ReasonNoDigit:       {Reason: ReasonNoDigit, Message: "Password must contain at least one numeric digit."},
	ReasonNoSpecialChar: {Reason: ReasonNoSpecialChar, Message: "Password must contain at least one special character."},
}

// Validate applies the composition rules in order and returns the first
// violation, or nil when the password satisfies all of them.
func Validate(password string) error {
	if utf8.RuneCountInString(password) <= minLength {
		return violations[ReasonTooShort]
	}

	if !containsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return violations[ReasonNoUppercase]
	}

	if !containsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		return violations[ReasonNoLowercase]
	}

	if !containsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return violations[ReasonNoDigit]
	}

	if !strings.ContainsAny(password, SpecialChars) {
		return violations[ReasonNoSpecialChar]
	}

	return nil
}

func containsFunc(s string, fn func(rune) bool) bool {
	for _, r := range s {
		if fn(r) {
			return true
		}
	}

	return false
}
