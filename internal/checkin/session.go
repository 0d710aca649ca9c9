// Package checkin holds the on-site check-in state: one Session per staff
// device, each owning a duplicate-scan guard and at most one in-progress
// confirmation workflow. Sessions are created and torn down explicitly; no
// package-level state.
package checkin

import (
	"sync"
	"time"

	"eventdesk/internal/apierr"
	"eventdesk/internal/directory"
)

// Workflow states. Verification shows the resolved student for staff to
// confirm; Accompaniment collects who came with them.
type State string

const (
	StateVerification  State = "verification"
	StateAccompaniment State = "accompaniment"
)

var (
	ErrSessionNotFound  = apierr.NotFound("check-in session not found")
	ErrAlreadyProcessed = apierr.Conflict("student already marked today")
	ErrWorkflowOpen     = apierr.Conflict("another check-in is already in progress")
	ErrNoWorkflow       = apierr.Conflict("no check-in in progress")
	ErrCommitInFlight   = apierr.Conflict("confirmation already in progress")
)

// Workflow is the transient state of one student's confirmation, owned by a
// session. Accompaniment fields persist across Back so nothing staff entered
// is lost.
type Workflow struct {
	GuardKey   string              `json:"-"`
	State      State               `json:"state"`
	Student    directory.Student   `json:"student"`
	Match      directory.Match     `json:"match"`
	Candidates []directory.Student `json:"candidates,omitempty"`
	Warning    string              `json:"warning,omitempty"`

	Category      string `json:"category,omitempty"`
	OtherText     string `json:"other_text,omitempty"`
	Participating bool   `json:"participating"`

	committing bool
}

// Session is one staff device's check-in session. The seen set is the
// duplicate-scan guard: identifiers with a commit in flight or completed in
// this session, seeded from today's ledger when the session opens. It is not
// a substitute for the ledger's own duplicate check.
type Session struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staff_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	mu   sync.Mutex
	seen map[string]struct{}
	wf   *Workflow
}

// Seen reports guard membership for a normalized identifier.
func (s *Session) Seen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

// Workflow returns a snapshot of the in-progress workflow, or nil.
func (s *Session) Workflow() *Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wf == nil {
		return nil
	}
	cp := *s.wf
	return &cp
}
