package checkin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/apierr"
	"eventdesk/internal/attendance"
	"eventdesk/internal/directory"
)

// Manager owns the live check-in sessions and drives the two-step
// confirmation workflow against the directory and the ledger.
type Manager struct {
	dir    *directory.Service
	ledger *attendance.Service

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(dir *directory.Service, ledger *attendance.Service) *Manager {
	return &Manager{
		dir:      dir,
		ledger:   ledger,
		sessions: make(map[string]*Session),
	}
}

// Open creates a session and seeds its duplicate guard from today's ledger,
// so students marked before a device (re)connected still short-circuit.
func (m *Manager) Open(ctx context.Context, staffID string) (*Session, error) {
	recs, err := m.ledger.ListToday(ctx)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:        uuid.NewString(),
		StaffID:   staffID,
		CreatedAt: time.Now(),
		seen:      make(map[string]struct{}, len(recs)),
	}
	for _, rec := range recs {
		sess.seen[rec.StudentID] = struct{}{}
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return sess, nil
}

// Close discards a session and all of its transient state.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *Manager) session(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Scan runs the guard check and directory lookup for raw input and, on
// success, opens a verification workflow. The guard entry is added before
// the lookup so a second near-simultaneous scan of the same code
// short-circuits; every failure path removes it again.
func (m *Manager) Scan(ctx context.Context, sessionID, raw string) (*Workflow, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return nil, err
	}

	norm, err := directory.Normalize(raw)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	// Guard first: rescanning an already-processed code is the common case
	// and must short-circuit before anything else.
	if _, dup := sess.seen[norm]; dup {
		sess.mu.Unlock()
		return nil, ErrAlreadyProcessed
	}
	if sess.wf != nil {
		sess.mu.Unlock()
		return nil, ErrWorkflowOpen
	}
	sess.seen[norm] = struct{}{}
	sess.mu.Unlock()

	res, err := m.dir.Lookup(ctx, raw)
	if err != nil {
		sess.mu.Lock()
		delete(sess.seen, norm)
		sess.mu.Unlock()
		return nil, err
	}

	// A partial scan can resolve to a student the guard already holds under
	// the full identifier.
	sess.mu.Lock()
	if _, dup := sess.seen[res.Student.ID]; dup && res.Student.ID != norm {
		delete(sess.seen, norm)
		sess.mu.Unlock()
		return nil, ErrAlreadyProcessed
	}
	wf := &Workflow{
		GuardKey:   norm,
		State:      StateVerification,
		Student:    res.Student,
		Match:      res.Match,
		Candidates: res.Candidates,
		Warning:    res.Warning,
	}
	sess.wf = wf
	cp := *wf
	sess.mu.Unlock()
	return &cp, nil
}

// Next advances Verification to Accompaniment, once the resolved record has
// every field staff are asked to verify.
func (m *Manager) Next(sessionID string) (*Workflow, error) {
	return m.transition(sessionID, StateVerification, func(wf *Workflow) error {
		if !wf.Student.Complete() {
			return apierr.Invalid("student record is missing required fields; fix the registration first")
		}
		wf.State = StateAccompaniment
		return nil
	})
}

// Back returns from Accompaniment to Verification; entered data is retained.
func (m *Manager) Back(sessionID string) (*Workflow, error) {
	return m.transition(sessionID, StateAccompaniment, func(wf *Workflow) error {
		wf.State = StateVerification
		return nil
	})
}

// Cancel discards the workflow and releases the duplicate-guard entry so the
// same student can be scanned again.
func (m *Manager) Cancel(sessionID string) error {
	sess, err := m.session(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.wf == nil {
		return ErrNoWorkflow
	}
	if sess.wf.committing {
		return ErrCommitInFlight
	}
	delete(sess.seen, sess.wf.GuardKey)
	sess.wf = nil
	return nil
}

func (m *Manager) transition(sessionID string, from State, apply func(*Workflow) error) (*Workflow, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.wf == nil {
		return nil, ErrNoWorkflow
	}
	if sess.wf.committing {
		return nil, ErrCommitInFlight
	}
	if sess.wf.State != from {
		return nil, ErrNoWorkflow
	}
	if err := apply(sess.wf); err != nil {
		return nil, err
	}
	cp := *sess.wf
	return &cp, nil
}

// ConfirmResult is what staff see after a successful commit.
type ConfirmResult struct {
	Record attendance.Record `json:"record"`
	Notice string            `json:"notice"`
}

// Confirm commits the attendance record. The guard entry stays in place on
// success; on failure it is released and the workflow kept so staff can
// retry. A second Confirm while one is in flight is rejected.
func (m *Manager) Confirm(ctx context.Context, sessionID, category, otherText string, participating bool) (*ConfirmResult, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	wf := sess.wf
	if wf == nil {
		sess.mu.Unlock()
		return nil, ErrNoWorkflow
	}
	if wf.State != StateAccompaniment {
		sess.mu.Unlock()
		return nil, ErrNoWorkflow
	}
	if wf.committing {
		sess.mu.Unlock()
		return nil, ErrCommitInFlight
	}
	// Retained so Back and a retry after failure keep the entered values.
	wf.Category = category
	wf.OtherText = otherText
	wf.Participating = participating
	if _, err := attendance.ResolveCategory(category, otherText); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	wf.committing = true
	sess.seen[wf.GuardKey] = struct{}{} // re-arm after a failed attempt
	studentID := wf.Student.ID
	sess.mu.Unlock()

	rec, err := m.ledger.Mark(ctx, attendance.MarkInput{
		StudentID:     studentID,
		Category:      category,
		OtherText:     otherText,
		Participating: participating,
	})

	sess.mu.Lock()
	defer sess.mu.Unlock()
	wf.committing = false
	if err != nil {
		delete(sess.seen, wf.GuardKey)
		return nil, err
	}
	sess.seen[wf.GuardKey] = struct{}{}
	sess.seen[studentID] = struct{}{}
	sess.wf = nil
	return &ConfirmResult{
		Record: rec,
		Notice: fmt.Sprintf("%s marked present (accompanied by: %s)", rec.FullName, rec.Accompaniment),
	}, nil
}
