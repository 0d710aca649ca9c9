package registration

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	"eventdesk/internal/apierr"
)

var (
	ErrNotFound   = apierr.NotFound("registration not found")
	ErrNoWaitlist = apierr.NotFound("waitlist is empty")
	ErrAtCapacity = apierr.Conflict("event is at capacity")
	ErrBadPayment = apierr.Invalid("payment must be unpaid, paid or waived")
)

// Repository persists registrations.
type Repository interface {
	// Create stores a registration, assigning the student identifier.
	Create(ctx context.Context, reg Registration) (Registration, error)
	// CountByStatus counts registrations in one status.
	CountByStatus(ctx context.Context, st Status) (int, error)
	// List returns registrations, optionally filtered by status, oldest first.
	List(ctx context.Context, st Status) ([]Registration, error)
	// SetPayment updates the payment status; false when the id is unknown.
	SetPayment(ctx context.Context, id string, p Payment) (bool, error)
	// OldestWaitlisted returns the earliest waitlisted registration, or nil.
	OldestWaitlisted(ctx context.Context) (*Registration, error)
	// SetStatus moves a registration between confirmed and waitlisted.
	SetStatus(ctx context.Context, id string, st Status) (bool, error)
}

// Service applies the waitlist threshold and admin operations.
type Service struct {
	repo     Repository
	capacity int
	validate *validator.Validate
}

func NewService(repo Repository, capacity int) *Service {
	return &Service{
		repo:     repo,
		capacity: capacity,
		validate: validator.New(),
	}
}

// Register accepts a public sign-up. Confirmed while the confirmed count is
// under capacity, waitlisted after. The student identifier is assigned
// either way.
func (s *Service) Register(ctx context.Context, in Input) (Registration, error) {
	if err := s.validate.Struct(in); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			f := errs[0]
			return Registration{}, apierr.Invalid(fmt.Sprintf("%s failed %s validation", f.Field(), f.Tag()))
		}
		return Registration{}, apierr.Invalid("invalid registration payload")
	}

	confirmed, err := s.repo.CountByStatus(ctx, StatusConfirmed)
	if err != nil {
		return Registration{}, apierr.Internal("failed to save registration")
	}
	status := StatusConfirmed
	if confirmed >= s.capacity {
		status = StatusWaitlisted
	}

	reg, err := s.repo.Create(ctx, Registration{
		ID:       ulid.Make().String(),
		FullName: in.FullName,
		Class:    in.Class,
		School:   in.School,
		Email:    in.Email,
		Mobile:   in.Mobile,
		Program:  in.Program,
		Gender:   in.Gender,
		Status:   status,
		Payment:  PaymentUnpaid,
	})
	if err != nil {
		return Registration{}, apierr.Internal("failed to save registration")
	}
	return reg, nil
}

// List returns registrations for the admin dashboard. statusFilter may be
// empty for all.
func (s *Service) List(ctx context.Context, statusFilter string) ([]Registration, error) {
	switch Status(statusFilter) {
	case "", StatusConfirmed, StatusWaitlisted:
	default:
		return nil, apierr.Invalid("status must be confirmed or waitlisted")
	}
	regs, err := s.repo.List(ctx, Status(statusFilter))
	if err != nil {
		return nil, apierr.Internal("failed to load registrations")
	}
	return regs, nil
}

// SetPayment records an admin payment-status change.
func (s *Service) SetPayment(ctx context.Context, id string, p Payment) error {
	switch p {
	case PaymentUnpaid, PaymentPaid, PaymentWaived:
	default:
		return ErrBadPayment
	}
	ok, err := s.repo.SetPayment(ctx, id, p)
	if err != nil {
		return apierr.Internal("failed to update payment status")
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Promote confirms the earliest waitlisted registration, but only while
// capacity allows.
func (s *Service) Promote(ctx context.Context) (*Registration, error) {
	confirmed, err := s.repo.CountByStatus(ctx, StatusConfirmed)
	if err != nil {
		return nil, apierr.Internal("failed to promote from waitlist")
	}
	if confirmed >= s.capacity {
		return nil, ErrAtCapacity
	}
	next, err := s.repo.OldestWaitlisted(ctx)
	if err != nil {
		return nil, apierr.Internal("failed to promote from waitlist")
	}
	if next == nil {
		return nil, ErrNoWaitlist
	}
	ok, err := s.repo.SetStatus(ctx, next.ID, StatusConfirmed)
	if err != nil {
		return nil, apierr.Internal("failed to promote from waitlist")
	}
	if !ok {
		// Gone between the read and the update.
		return nil, ErrNotFound
	}
	next.Status = StatusConfirmed
	return next, nil
}
