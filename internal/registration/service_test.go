package registration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"eventdesk/internal/apierr"
)

type memRepo struct {
	regs []Registration
	seq  int
}

func (m *memRepo) Create(_ context.Context, reg Registration) (Registration, error) {
	m.seq++
	reg.StudentID = fmt.Sprintf("STU%04d", m.seq)
	reg.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Second)
	m.regs = append(m.regs, reg)
	return reg, nil
}

func (m *memRepo) CountByStatus(_ context.Context, st Status) (int, error) {
	n := 0
	for _, r := range m.regs {
		if r.Status == st {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) List(_ context.Context, st Status) ([]Registration, error) {
	var out []Registration
	for _, r := range m.regs {
		if st == "" || r.Status == st {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) SetPayment(_ context.Context, id string, p Payment) (bool, error) {
	for i := range m.regs {
		if m.regs[i].ID == id {
			m.regs[i].Payment = p
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) OldestWaitlisted(_ context.Context) (*Registration, error) {
	var oldest *Registration
	for i := range m.regs {
		r := &m.regs[i]
		if r.Status != StatusWaitlisted {
			continue
		}
		if oldest == nil || r.CreatedAt.Before(oldest.CreatedAt) {
			oldest = r
		}
	}
	if oldest == nil {
		return nil, nil
	}
	cp := *oldest
	return &cp, nil
}

func (m *memRepo) SetStatus(_ context.Context, id string, st Status) (bool, error) {
	for i := range m.regs {
		if m.regs[i].ID == id {
			m.regs[i].Status = st
			return true, nil
		}
	}
	return false, nil
}

func validInput(i int) Input {
	return Input{
		FullName: fmt.Sprintf("Student %d", i),
		Class:    "7B",
		School:   "Hill School",
		Email:    fmt.Sprintf("student%d@example.com", i),
		Mobile:   "9876543210",
		Program:  "Quiz",
		Gender:   "female",
	}
}

func TestRegisterWaitlistThreshold(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, 2)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		reg, err := svc.Register(ctx, validInput(i))
		if err != nil {
			t.Fatal(err)
		}
		if reg.Status != StatusConfirmed {
			t.Errorf("registration %d status = %q, want confirmed", i, reg.Status)
		}
	}

	reg, err := svc.Register(ctx, validInput(3))
	if err != nil {
		t.Fatal(err)
	}
	if reg.Status != StatusWaitlisted {
		t.Errorf("over-capacity registration status = %q, want waitlisted", reg.Status)
	}
	if reg.StudentID != "STU0003" {
		t.Errorf("waitlisted registration still gets an identifier, got %q", reg.StudentID)
	}
	if reg.Payment != PaymentUnpaid {
		t.Errorf("payment = %q, want unpaid", reg.Payment)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(&memRepo{}, 10)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{name: "missing name", mutate: func(in *Input) { in.FullName = "" }},
		{name: "bad email", mutate: func(in *Input) { in.Email = "not-an-email" }},
		{name: "short mobile", mutate: func(in *Input) { in.Mobile = "123" }},
		{name: "bad gender", mutate: func(in *Input) { in.Gender = "?" }},
		{name: "missing program", mutate: func(in *Input) { in.Program = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(1)
			tt.mutate(&in)
			_, err := svc.Register(ctx, in)
			var api *apierr.Error
			if !errors.As(err, &api) || api.Code != apierr.CodeInvalidArgument {
				t.Fatalf("err = %v, want invalid-argument", err)
			}
		})
	}
}

func TestPromote(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, 1)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validInput(1)); err != nil {
		t.Fatal(err)
	}
	second, err := svc.Register(ctx, validInput(2))
	if err != nil {
		t.Fatal(err)
	}
	if second.Status != StatusWaitlisted {
		t.Fatalf("second registration not waitlisted: %q", second.Status)
	}

	// Still at capacity: promote refused.
	if _, err := svc.Promote(ctx); !errors.Is(err, ErrAtCapacity) {
		t.Fatalf("promote err = %v, want ErrAtCapacity", err)
	}

	// A dropout frees a seat.
	if _, err := repo.SetStatus(ctx, repo.regs[0].ID, StatusWaitlisted); err != nil {
		t.Fatal(err)
	}
	promoted, err := svc.Promote(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if promoted.Status != StatusConfirmed {
		t.Errorf("promoted status = %q", promoted.Status)
	}
	// Oldest waitlisted entry wins.
	if promoted.ID != repo.regs[0].ID {
		t.Errorf("promoted %q, want the earliest waitlisted %q", promoted.ID, repo.regs[0].ID)
	}
}

func TestStudentIDsWidenPastFourDigits(t *testing.T) {
	repo := &memRepo{seq: 9999}
	svc := NewService(repo, 20000)
	ctx := context.Background()

	first, err := svc.Register(ctx, validInput(1))
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Register(ctx, validInput(2))
	if err != nil {
		t.Fatal(err)
	}
	if first.StudentID != "STU10000" || second.StudentID != "STU10001" {
		t.Errorf("identifiers truncated past four digits: %q, %q", first.StudentID, second.StudentID)
	}
}

// vanishingRepo loses the waitlisted row between the read and the status
// update, as a concurrent delete would.
type vanishingRepo struct{ *memRepo }

func (v vanishingRepo) SetStatus(_ context.Context, _ string, _ Status) (bool, error) {
	return false, nil
}

func TestPromoteVanishedRegistration(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(vanishingRepo{repo}, 5)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validInput(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.SetStatus(ctx, reg.ID, StatusWaitlisted); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Promote(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("promote of a vanished registration err = %v, want ErrNotFound", err)
	}
	if repo.regs[0].Status != StatusWaitlisted {
		t.Errorf("status mutated despite failed promote: %q", repo.regs[0].Status)
	}
}

func TestPromoteEmptyWaitlist(t *testing.T) {
	svc := NewService(&memRepo{}, 5)
	if _, err := svc.Promote(context.Background()); !errors.Is(err, ErrNoWaitlist) {
		t.Fatalf("err = %v, want ErrNoWaitlist", err)
	}
}

func TestSetPayment(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, 5)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validInput(1))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.SetPayment(ctx, reg.ID, PaymentPaid); err != nil {
		t.Fatal(err)
	}
	if repo.regs[0].Payment != PaymentPaid {
		t.Errorf("payment = %q, want paid", repo.regs[0].Payment)
	}

	if err := svc.SetPayment(ctx, reg.ID, Payment("cash")); !errors.Is(err, ErrBadPayment) {
		t.Fatalf("err = %v, want ErrBadPayment", err)
	}
	if err := svc.SetPayment(ctx, "missing", PaymentWaived); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
