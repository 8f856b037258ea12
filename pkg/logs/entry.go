// Package logs serves the admin activity logs: login attempts, user
// registrations, e-mail verifications and contact submissions.
package logs

import (
	"errors"
	"fmt"
	"time"
)

// Type names one log listing.
type Type string

const (
	LoginAttempts      Type = "login_attempts"
	UserRegistrations  Type = "user_registrations"
	EmailVerifications Type = "email_verifications"
	ContactSubmissions Type = "contact_submissions"
)

// DefaultType is listed when no type is requested.
const DefaultType = LoginAttempts

// Types lists every log type in menu order.
var Types = []Type{LoginAttempts, UserRegistrations, EmailVerifications, ContactSubmissions}

// ErrUnknownType is returned for a type outside Types.
var ErrUnknownType = errors.New("invalid log type")

// ParseType validates s. An empty string yields DefaultType.
func ParseType(s string) (Type, error) {
	if s == "" {
		return DefaultType, nil
	}
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Title is the heading shown above the listing.
func (t Type) Title() string {
	switch t {
	case LoginAttempts:
		return "Login Attempts"
	case UserRegistrations:
		return "User Registrations"
	case EmailVerifications:
		return "Email Verifications"
	case ContactSubmissions:
		return "Contact Submissions"
	}
	return string(t)
}

// Entry is one log record. Which fields are set depends on Type.
type Entry struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Type      Type      `bson:"type" json:"type"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	Username  string `bson:"username,omitempty" json:"username,omitempty"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
	IPAddress string `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Success   bool   `bson:"success,omitempty" json:"success,omitempty"`

	Active   bool `bson:"active,omitempty" json:"active,omitempty"`
	Admin    bool `bson:"admin,omitempty" json:"admin,omitempty"`
	Verified bool `bson:"verified,omitempty" json:"verified,omitempty"`

	ExpiresAt time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`

	Name    string `bson:"name,omitempty" json:"name,omitempty"`
	Subject string `bson:"subject,omitempty" json:"subject,omitempty"`
	Message string `bson:"message,omitempty" json:"message,omitempty"`
}

// Expired reports whether a verification link lapsed before now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

const timeLayout = "2006-01-02 15:04:05"

// Columns returns the table and export headers for t.
func Columns(t Type) []string {
	switch t {
	case LoginAttempts:
		return []string{"Username/Email", "IP Address", "Success", "Attempted At"}
	case UserRegistrations:
		return []string{"Username", "Email", "Active", "Admin", "Created At"}
	case EmailVerifications:
		return []string{"Email", "User", "Verified", "Expired", "Created At"}
	case ContactSubmissions:
		return []string{"Name", "Email", "Subject", "Message", "Created At"}
	}
	return nil
}

// Row formats e under Columns(e.Type).
func (e Entry) Row(now time.Time) []string {
	created := e.CreatedAt.UTC().Format(timeLayout)
	switch e.Type {
	case LoginAttempts:
		who := e.Username
		if who == "" {
			who = e.Email
		}
		if who == "" {
			who = "Unknown"
		}
		return []string{who, e.IPAddress, outcome(e.Success), created}
	case UserRegistrations:
		return []string{e.Username, e.Email, yesNo(e.Active), yesNo(e.Admin), created}
	case EmailVerifications:
		user := e.Username
		if user == "" {
			user = "Unknown"
		}
		return []string{e.Email, user, yesNo(e.Verified), yesNo(e.Expired(now)), created}
	case ContactSubmissions:
		return []string{e.Name, e.Email, e.Subject, e.Message, created}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func outcome(b bool) string {
	if b {
		return "Success"
	}
	return "Failed"
}
