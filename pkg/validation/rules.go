// Package validation holds the synchronous field rules shared by the
// contact, sign-up and reset-password forms, and the submit gate that blocks
// a form on its first failing rule.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Messages shown next to fields and in toasts.
const (
	MsgRequired      = "This field is required."
	MsgEmail         = "Please enter a valid email address."
	MsgMessageLength = "Message must be at least 10 characters long."
	MsgUsername      = "Username must be 3-30 characters long and contain only letters, numbers, and underscores."
	MsgMismatch      = "Passwords do not match"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// IsEmail reports whether s has the local@domain.tld shape.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsUsername reports whether s is 3 to 30 letters, digits or underscores.
func IsUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// PasswordOptions selects which composition rules apply.
type PasswordOptions struct {
	MinLength           int
	RequireUppercase    bool
	RequireLowercase    bool
	RequireNumbers      bool
	RequireSpecialChars bool
}

// DefaultPasswordOptions requires 8 characters and every character class.
func DefaultPasswordOptions() PasswordOptions {
	return PasswordOptions{
		MinLength:           8,
		RequireUppercase:    true,
		RequireLowercase:    true,
		RequireNumbers:      true,
		RequireSpecialChars: true,
	}
}

// Requirement names used by the requirement checklist markup
// (data-requirement="...").
const (
	ReqLength    = "length"
	ReqUppercase = "uppercase"
	ReqLowercase = "lowercase"
	ReqNumbers   = "numbers"
	ReqSpecial   = "special"
)

// Requirements is the per-rule outcome for a password. Disabled rules are
// reported as met.
type Requirements struct {
	Length    bool
	Uppercase bool
	Lowercase bool
	Numbers   bool
	Special   bool
}

// CheckRequirements evaluates pw against opts.
func CheckRequirements(pw string, opts PasswordOptions) Requirements {
	return Requirements{
		Length:    len([]rune(pw)) >= opts.MinLength,
		Uppercase: !opts.RequireUppercase || upperPattern.MatchString(pw),
		Lowercase: !opts.RequireLowercase || lowerPattern.MatchString(pw),
		Numbers:   !opts.RequireNumbers || digitPattern.MatchString(pw),
		Special:   !opts.RequireSpecialChars || specialPattern.MatchString(pw),
	}
}

// Met reports whether every rule holds.
func (r Requirements) Met() bool {
	return r.Length && r.Uppercase && r.Lowercase && r.Numbers && r.Special
}

// ByName maps requirement names to outcomes.
func (r Requirements) ByName() map[string]bool {
	return map[string]bool{
		ReqLength:    r.Length,
		ReqUppercase: r.Uppercase,
		ReqLowercase: r.Lowercase,
		ReqNumbers:   r.Numbers,
		ReqSpecial:   r.Special,
	}
}

// PasswordErrors lists every failed composition rule followed by a mismatch
// error when confirm differs. A compliant matching password yields none.
func PasswordErrors(pw, confirm string, opts PasswordOptions) []string {
	errs := compositionErrors(pw, opts)
	if pw != confirm {
		errs = append(errs, MsgMismatch)
	}
	return errs
}

func compositionErrors(pw string, opts PasswordOptions) []string {
	var errs []string
	r := CheckRequirements(pw, opts)
	if !r.Length {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters long", opts.MinLength))
	}
	if !r.Uppercase {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !r.Lowercase {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !r.Numbers {
		errs = append(errs, "Password must contain at least one number")
	}
	if !r.Special {
		errs = append(errs, "Password must contain at least one special character")
	}
	return errs
}

// UserInputs returns the personal strings a password should not resemble:
// the username and the local part of the email.
func UserInputs(username, email string) []string {
	var inputs []string
	if username != "" {
		inputs = append(inputs, username)
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		inputs = append(inputs, local)
	} else if email != "" {
		inputs = append(inputs, email)
	}
	return inputs
}
