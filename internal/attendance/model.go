package attendance

import (
	"strings"
	"time"

	"eventdesk/internal/apierr"
)

// Accompaniment categories staff can pick from. Other carries free text
// supplied at confirmation time; the resolved text is what gets stored.
const (
	CategoryFather = "Father"
	CategoryMother = "Mother"
	CategoryBoth   = "Both"
	CategoryOther  = "Other"
	CategoryNone   = "None"
)

const DateLayout = "2006-01-02"

// Record is one ledger entry: a student marked present on a calendar day.
// Student fields are a snapshot taken at check-in time; later edits to the
// registration do not flow back into the ledger. The shape is flat so the
// CSV/PDF export surfaces can serialize it directly.
type Record struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	FullName      string    `json:"full_name"`
	Class         string    `json:"class"`
	School        string    `json:"school"`
	Email         string    `json:"email"`
	Gender        string    `json:"gender"`
	Program       string    `json:"program"`
	Day           string    `json:"day"` // local calendar date, YYYY-MM-DD
	Accompaniment string    `json:"accompaniment"`
	Participating bool      `json:"participating"`
	CreatedAt     time.Time `json:"created_at"`
}

// ResolveCategory validates the selected category and substitutes the free
// text when Other is chosen.
func ResolveCategory(category, otherText string) (string, error) {
	switch category {
	case CategoryFather, CategoryMother, CategoryBoth, CategoryNone:
		return category, nil
	case CategoryOther:
		text := strings.TrimSpace(otherText)
		if text == "" {
			return "", apierr.Invalid("accompanying person must be named when Other is selected")
		}
		return text, nil
	default:
		return "", apierr.Invalid("unknown accompaniment category")
	}
}

// CategoryBucket folds a stored accompaniment value back into its reporting
// bucket; free-text values count as Other.
func CategoryBucket(resolved string) string {
	switch resolved {
	case CategoryFather, CategoryMother, CategoryBoth, CategoryNone:
		return resolved
	default:
		return CategoryOther
	}
}

// Participation returns how many people a record contributes to the total
// headcount: the student plus their accompaniment.
func Participation(resolved string) int {
	switch resolved {
	case CategoryNone:
		return 1
	case CategoryBoth:
		return 3
	default:
		return 2
	}
}
