package directory

import (
	"context"
)

// Match tags how confidently a lookup resolved.
type Match string

const (
	MatchExact     Match = "exact"
	MatchPartial   Match = "partial"
	MatchAmbiguous Match = "ambiguous"
)

// Result is a successful resolution. When Match is MatchAmbiguous, Student is
// the first candidate in iteration order, Candidates carries the full set and
// Warning tells staff to verify manually before confirming.
type Result struct {
	Student    Student   `json:"student"`
	Match      Match     `json:"match"`
	Candidates []Student `json:"candidates,omitempty"`
	Warning    string    `json:"warning,omitempty"`
}

// Repository is the read side of the registration store.
type Repository interface {
	// FindByID returns the student with exactly this identifier, or nil.
	FindByID(ctx context.Context, id string) (*Student, error)
	// FindByPrefix returns students whose identifier starts with prefix,
	// case-insensitively, in stable iteration order.
	FindByPrefix(ctx context.Context, prefix string) ([]Student, error)
	// List returns the full directory, for exports and bulk consumers.
	List(ctx context.Context) ([]Student, error)
}

// Service performs code-to-student resolution.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Lookup resolves raw input to at most one student. Exact match wins; else a
// unique prefix match; else the first of several prefix matches, flagged so
// the caller can warn. All failures come back as typed errors.
func (s *Service) Lookup(ctx context.Context, raw string) (Result, error) {
	norm, err := Normalize(raw)
	if err != nil {
		lookupOutcomes.WithLabelValues("too_short").Inc()
		return Result{}, err
	}

	exact, err := s.repo.FindByID(ctx, norm)
	if err != nil {
		lookupOutcomes.WithLabelValues("error").Inc()
		return Result{}, err
	}
	if exact != nil {
		lookupOutcomes.WithLabelValues("exact").Inc()
		return Result{Student: *exact, Match: MatchExact}, nil
	}

	matches, err := s.repo.FindByPrefix(ctx, norm)
	if err != nil {
		lookupOutcomes.WithLabelValues("error").Inc()
		return Result{}, err
	}
	switch len(matches) {
	case 0:
		lookupOutcomes.WithLabelValues("not_found").Inc()
		return Result{}, ErrStudentNotFound
	case 1:
		lookupOutcomes.WithLabelValues("partial").Inc()
		return Result{Student: matches[0], Match: MatchPartial}, nil
	default:
		lookupOutcomes.WithLabelValues("ambiguous").Inc()
		return Result{
			Student:    matches[0],
			Match:      MatchAmbiguous,
			Candidates: matches,
			Warning:    "multiple students share this code prefix; verify before confirming",
		}, nil
	}
}

// ListAll exposes the directory for export consumers.
func (s *Service) ListAll(ctx context.Context) ([]Student, error) {
	return s.repo.List(ctx)
}
