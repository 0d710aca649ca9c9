// Package directory resolves scanned or hand-typed codes to registered
// students. It is read-only: students are created by the registration flow
// and only looked up here.
package directory

import (
	"strings"

	"eventdesk/internal/apierr"
)

// Student is the fixed shape the rest of the application works with. The
// storage adapter maps whatever the registration store holds into this shape
// exactly once, at scan time.
type Student struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Class    string `json:"class"`
	School   string `json:"school"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Program  string `json:"program"`
	Gender   string `json:"gender"`
}

// Complete reports whether the record carries everything staff must verify
// before attendance can proceed.
func (s Student) Complete() bool {
	return s.ID != "" && s.FullName != "" && s.Class != "" && s.School != ""
}

// Identifier codes are at most 7 characters; anything longer is scanner
// noise appended to the code.
const (
	idLength    = 7
	minIDLength = 3
)

var (
	ErrInputTooShort   = apierr.Invalid("identifier must have at least 3 usable characters")
	ErrStudentNotFound = apierr.NotFound("no registered student matches this code")
)

// Normalize reduces raw scanner or keyboard input to a canonical identifier:
// non-alphanumerics stripped, uppercased, truncated to 7 characters. Returns
// ErrInputTooShort when fewer than 3 characters remain.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
			if b.Len() == idLength {
				break
			}
		}
	}
	norm := strings.ToUpper(b.String())
	if len(norm) < minIDLength {
		return "", ErrInputTooShort
	}
	return norm, nil
}
