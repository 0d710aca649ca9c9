package guest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/apierr"
)

var (
	ErrNotFound     = apierr.NotFound("guest not found")
	ErrNotPending   = apierr.Conflict("guest is not pending check-in")
	ErrNotCheckedIn = apierr.Conflict("guest must be checked in before check-out")
	ErrAttendedBy   = apierr.Invalid("attended_by is required to check a guest in")
)

// Repository persists guests.
type Repository interface {
	Get(ctx context.Context, id string) (*Guest, error)
	ListByDay(ctx context.Context, day string) ([]Guest, error)
	Create(ctx context.Context, g Guest) (Guest, error)
	// Transition flips status from one state to the next, stamping at.
	// Returns false when the guest was not in the from state.
	Transition(ctx context.Context, id string, from, to Status, attendedBy string, at time.Time) (bool, error)
}

// BulkInput is one row of a bulk guest load.
type BulkInput struct {
	Name  string `json:"name" yaml:"name" binding:"required"`
	Phone string `json:"phone" yaml:"phone"`
	Notes string `json:"notes" yaml:"notes"`
}

// Service drives the guest lifecycle.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) today() string {
	return s.now().Local().Format("2006-01-02")
}

// BulkCreate loads expected guests for today, all pending.
func (s *Service) BulkCreate(ctx context.Context, inputs []BulkInput) ([]Guest, error) {
	out := make([]Guest, 0, len(inputs))
	for _, in := range inputs {
		if in.Name == "" {
			return nil, apierr.Invalid("guest name is required")
		}
		g, err := s.repo.Create(ctx, Guest{
			ID:     uuid.NewString(),
			Name:   in.Name,
			Phone:  in.Phone,
			Notes:  in.Notes,
			Status: StatusPending,
			Day:    s.today(),
		})
		if err != nil {
			return nil, apierr.Internal("failed to create guests")
		}
		out = append(out, g)
	}
	return out, nil
}

// ListToday returns today's guest list.
func (s *Service) ListToday(ctx context.Context) ([]Guest, error) {
	gs, err := s.repo.ListByDay(ctx, s.today())
	if err != nil {
		return nil, apierr.Internal("failed to load guests")
	}
	return gs, nil
}

// Search filters today's list in memory over name, phone and id prefix.
func (s *Service) Search(ctx context.Context, term string) ([]Guest, error) {
	gs, err := s.ListToday(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Guest, 0, len(gs))
	for _, g := range gs {
		if g.Matches(term) {
			out = append(out, g)
		}
	}
	return out, nil
}

// CheckIn moves a pending guest to checked-in. The staff member doing the
// check-in must identify themselves.
func (s *Service) CheckIn(ctx context.Context, id, attendedBy string) (*Guest, error) {
	if attendedBy == "" {
		return nil, ErrAttendedBy
	}
	return s.transition(ctx, id, StatusPending, StatusCheckedIn, attendedBy, ErrNotPending)
}

// CheckOut moves a checked-in guest to checked-out. Pending guests cannot
// skip straight to checked-out.
func (s *Service) CheckOut(ctx context.Context, id string) (*Guest, error) {
	return s.transition(ctx, id, StatusCheckedIn, StatusCheckedOut, "", ErrNotCheckedIn)
}

func (s *Service) transition(ctx context.Context, id string, from, to Status, attendedBy string, conflict error) (*Guest, error) {
	ok, err := s.repo.Transition(ctx, id, from, to, attendedBy, s.now())
	if err != nil {
		return nil, apierr.Internal("failed to update guest")
	}
	if !ok {
		g, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, apierr.Internal("failed to update guest")
		}
		if g == nil {
			return nil, ErrNotFound
		}
		return nil, conflict
	}
	g, err := s.repo.Get(ctx, id)
	if err != nil || g == nil {
		return nil, apierr.Internal("failed to update guest")
	}
	return g, nil
}
