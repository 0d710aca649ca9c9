// Package registration owns the public sign-up flow, the waitlist and the
// admin payment view. Confirmed registrations double as the student
// directory the check-in tools resolve against.
package registration

import "time"

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusWaitlisted Status = "waitlisted"
)

type Payment string

const (
	PaymentUnpaid Payment = "unpaid"
	PaymentPaid   Payment = "paid"
	PaymentWaived Payment = "waived"
)

// Registration is one submitted sign-up. StudentID is assigned at creation
// time, is globally unique and is never reused, waitlisted or not.
type Registration struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	FullName  string    `json:"full_name"`
	Class     string    `json:"class"`
	School    string    `json:"school"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	Program   string    `json:"program"`
	Gender    string    `json:"gender"`
	Status    Status    `json:"status"`
	Payment   Payment   `json:"payment"`
	CreatedAt time.Time `json:"created_at"`
}

// Input is the public registration form payload.
type Input struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Class    string `json:"class" validate:"required,max=40"`
	School   string `json:"school" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"required,min=7,max=16"`
	Program  string `json:"program" validate:"required,max=80"`
	Gender   string `json:"gender" validate:"required,oneof=male female other"`
}
