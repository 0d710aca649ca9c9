// Package guest tracks ad-hoc, non-student attendees. Guests move through a
// simple lifecycle and never touch the student directory or the
// duplicate-scan guard.
package guest

import (
	"strings"
	"time"
)

// Guest lifecycle. Checked-out is only reachable from checked-in.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
)

// Guest is one expected attendee, usually created in bulk before the event.
type Guest struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Status       Status     `json:"status"`
	AttendedBy   string     `json:"attended_by,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Day          string     `json:"day"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Matches reports whether term appears in the guest's name or phone, or is a
// prefix of the identifier. Case-insensitive, mirroring the on-site search
// box.
func (g Guest) Matches(term string) bool {
	if term == "" {
		return true
	}
	t := strings.ToLower(term)
	return strings.Contains(strings.ToLower(g.Name), t) ||
		strings.Contains(g.Phone, term) ||
		strings.HasPrefix(strings.ToLower(g.ID), t)
}
