package checkin

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eventdesk/internal/apierr"
	"eventdesk/internal/attendance"
	"eventdesk/internal/directory"
)

type memDirectory struct{ students []directory.Student }

func (m *memDirectory) FindByID(_ context.Context, id string) (*directory.Student, error) {
	for i := range m.students {
		if m.students[i].ID == id {
			s := m.students[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memDirectory) FindByPrefix(_ context.Context, prefix string) ([]directory.Student, error) {
	var out []directory.Student
	for _, s := range m.students {
		if strings.HasPrefix(s.ID, prefix) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memDirectory) List(_ context.Context) ([]directory.Student, error) {
	return m.students, nil
}

type memLedger struct {
	recs       []attendance.Record
	failInsert bool
	clock      time.Time
}

func (m *memLedger) Insert(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	if m.failInsert {
		return attendance.Record{}, errors.New("store unavailable")
	}
	for _, r := range m.recs {
		if r.StudentID == rec.StudentID && r.Day == rec.Day {
			return attendance.Record{}, attendance.ErrAlreadyMarked
		}
	}
	m.clock = m.clock.Add(time.Second)
	rec.CreatedAt = m.clock
	m.recs = append(m.recs, rec)
	return rec, nil
}

func (m *memLedger) ListByDay(_ context.Context, day string) ([]attendance.Record, error) {
	var out []attendance.Record
	for i := len(m.recs) - 1; i >= 0; i-- {
		if m.recs[i].Day == day {
			out = append(out, m.recs[i])
		}
	}
	return out, nil
}

func (m *memLedger) ExistsOnDay(_ context.Context, studentID, day string) (bool, error) {
	for _, r := range m.recs {
		if r.StudentID == studentID && r.Day == day {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLedger) DeleteByDay(_ context.Context, day string) (int64, error) {
	var kept []attendance.Record
	var n int64
	for _, r := range m.recs {
		if r.Day == day {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.recs = kept
	return n, nil
}

// slowLedger parks Insert until released, to hold a commit in flight.
type slowLedger struct {
	memLedger
	entered chan struct{}
	release chan struct{}
}

func (s *slowLedger) Insert(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.memLedger.Insert(ctx, rec)
}

func newTestManager(repo attendance.Repository) *Manager {
	dir := directory.NewService(&memDirectory{students: []directory.Student{
		{ID: "STU0001", FullName: "Asha Rao", Class: "7B", School: "Hill School"},
		{ID: "STU0002", FullName: "Benny Koshy", Class: "8A", School: "Hill School"},
		{ID: "STU0003", FullName: "Nameless", Class: "", School: "Hill School"}, // incomplete
	}})
	ledger := attendance.NewService(repo, dir, nil)
	return NewManager(dir, ledger)
}

func openSession(t *testing.T, mgr *Manager) *Session {
	t.Helper()
	sess, err := mgr.Open(context.Background(), "staff-1")
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestScanOpensVerification(t *testing.T) {
	mgr := newTestManager(&memLedger{clock: time.Now()})
	sess := openSession(t, mgr)

	wf, err := mgr.Scan(context.Background(), sess.ID, "stu0001-noise")
	if err != nil {
		t.Fatal(err)
	}
	if wf.State != StateVerification {
		t.Errorf("state = %q, want verification", wf.State)
	}
	if wf.Student.ID != "STU0001" || wf.Match != directory.MatchExact {
		t.Errorf("unexpected resolution: %+v", wf)
	}
	if !sess.Seen("STU0001") {
		t.Error("guard entry missing after scan")
	}
}

func TestGuardShortCircuitsBeforeCommit(t *testing.T) {
	mgr := newTestManager(&memLedger{clock: time.Now()})
	sess := openSession(t, mgr)

	if _, err := mgr.Scan(context.Background(), sess.ID, "STU0001"); err != nil {
		t.Fatal(err)
	}
	// Second scan of the same code, no commit yet: must short-circuit.
	_, err := mgr.Scan(context.Background(), sess.ID, "STU0001")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("second scan err = %v, want ErrAlreadyProcessed", err)
	}
}

func TestScanFailureReleasesGuard(t *testing.T) {
	mgr := newTestManager(&memLedger{clock: time.Now()})
	sess := openSession(t, mgr)

	_, err := mgr.Scan(context.Background(), sess.ID, "ZZZ1234")
	if !errors.Is(err, directory.ErrStudentNotFound) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}
	if sess.Seen("ZZZ1234") {
		t.Error("guard entry kept after failed lookup")
	}
	// Same (still unknown) code can be scanned again and fails the same way.
	if _, err := mgr.Scan(context.Background(), sess.ID, "ZZZ1234"); !errors.Is(err, directory.ErrStudentNotFound) {
		t.Fatalf("re-scan err = %v, want ErrStudentNotFound", err)
	}
}

func TestCancelReleasesGuard(t *testing.T) {
	mgr := newTestManager(&memLedger{clock: time.Now()})
	sess := openSession(t, mgr)
	ctx := context.Background()

	if _, err := mgr.Scan(ctx, sess.ID, "STU0001"); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Cancel(sess.ID); err != nil {
		t.Fatal(err)
	}
	if sess.Workflow() != nil {
		t.Error("workflow survived cancel")
	}
	if wf, err := mgr.Scan(ctx, sess.ID, "STU0001"); err != nil || wf.State != StateVerification {
		t.Errorf("re-scan after cancel: wf=%v err=%v", wf, err)
	}
}

func TestNextRequiresCompleteRecord(t *testing.T) {
	mgr := newTestManager(&memLedger{clock: time.Now()})
	sess := openSession(t, mgr)
	ctx := context.Background()

	if _, err := mgr.Scan(ctx, sess.ID, "STU0003"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Next(sess.ID); err == nil {
		t.Fatal("Next allowed with an incomplete student record")
	}

	if err := mgr.Cancel(sess.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Scan(ctx, sess.ID, "STU0001"); err != nil {
		t.Fatal(err)
	}
	wf, err := mgr.Next(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if wf.State != StateAccompaniment {
		t.Errorf("state = %q, want accompaniment", wf.State)
	}
}

func TestConfirmOtherGating(t *testing.T) {
	mgr := newTestManager(&memLedger{clock: time.Now()})
	sess := openSession(t, mgr)
	ctx := context.Background()

	if _, err := mgr.Scan(ctx, sess.ID, "STU0001"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Next(sess.ID); err != nil {
		t.Fatal(err)
	}

	// Other with empty free text is rejected before any store call.
	_, err := mgr.Confirm(ctx, sess.ID, attendance.CategoryOther, "", false)
	var api *apierr.Error
	if !errors.As(err, &api) || api.Code != apierr.CodeInvalidArgument {
		t.Fatalf("err = %v, want invalid-argument", err)
	}

	res, err := mgr.Confirm(ctx, sess.ID, attendance.CategoryOther, "Aunt", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Record.Accompaniment != "Aunt" {
		t.Errorf("committed accompaniment = %q, want Aunt", res.Record.Accompaniment)
	}
	if res.Notice == "" || !strings.Contains(res.Notice, "Asha Rao") {
		t.Errorf("notice does not name the student: %q", res.Notice)
	}
	if sess.Workflow() != nil {
		t.Error("workflow not cleared after commit")
	}
}

func TestBackRetainsEnteredData(t *testing.T) {
	mgr := newTestManager(&memLedger{clock: time.Now()})
	sess := openSession(t, mgr)
	ctx := context.Background()

	if _, err := mgr.Scan(ctx, sess.ID, "STU0001"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Next(sess.ID); err != nil {
		t.Fatal(err)
	}
	// A rejected confirm still records what staff entered.
	if _, err := mgr.Confirm(ctx, sess.ID, attendance.CategoryOther, "", true); err == nil {
		t.Fatal("expected gating error")
	}

	wf, err := mgr.Back(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if wf.State != StateVerification {
		t.Errorf("state = %q, want verification", wf.State)
	}
	if wf.Category != attendance.CategoryOther || !wf.Participating {
		t.Errorf("entered data lost across Back: %+v", wf)
	}
}

func TestCommitFailureReleasesGuardKeepsWorkflow(t *testing.T) {
	repo := &memLedger{clock: time.Now(), failInsert: true}
	mgr := newTestManager(repo)
	sess := openSession(t, mgr)
	ctx := context.Background()

	if _, err := mgr.Scan(ctx, sess.ID, "STU0001"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Next(sess.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Confirm(ctx, sess.ID, attendance.CategoryMother, "", false); err == nil {
		t.Fatal("expected commit failure")
	}
	if sess.Seen("STU0001") {
		t.Error("guard entry kept after failed commit")
	}
	wf := sess.Workflow()
	if wf == nil || wf.State != StateAccompaniment {
		t.Fatalf("workflow not retained for retry: %+v", wf)
	}

	// Store recovers; the retry succeeds and re-arms the guard.
	repo.failInsert = false
	res, err := mgr.Confirm(ctx, sess.ID, attendance.CategoryMother, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Record.Accompaniment != attendance.CategoryMother {
		t.Errorf("retry committed %q", res.Record.Accompaniment)
	}
	if !sess.Seen("STU0001") {
		t.Error("guard entry missing after successful retry")
	}
}

func TestConfirmInFlightBlocksOthers(t *testing.T) {
	repo := &slowLedger{
		memLedger: memLedger{clock: time.Now()},
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	mgr := newTestManager(repo)
	sess := openSession(t, mgr)
	ctx := context.Background()

	if _, err := mgr.Scan(ctx, sess.ID, "STU0001"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Next(sess.ID); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := mgr.Confirm(ctx, sess.ID, attendance.CategoryFather, "", false)
		done <- err
	}()
	<-repo.entered // first commit is now parked inside the store write

	if _, err := mgr.Confirm(ctx, sess.ID, attendance.CategoryFather, "", false); !errors.Is(err, ErrCommitInFlight) {
		t.Errorf("second confirm err = %v, want ErrCommitInFlight", err)
	}
	if err := mgr.Cancel(sess.ID); !errors.Is(err, ErrCommitInFlight) {
		t.Errorf("cancel during commit err = %v, want ErrCommitInFlight", err)
	}

	close(repo.release)
	if err := <-done; err != nil {
		t.Fatalf("first confirm failed after release: %v", err)
	}
	if sess.Workflow() != nil {
		t.Error("workflow not cleared after the in-flight commit completed")
	}
}

func TestOpenSeedsGuardFromLedger(t *testing.T) {
	repo := &memLedger{clock: time.Now()}
	mgr := newTestManager(repo)
	ctx := context.Background()

	first := openSession(t, mgr)
	if _, err := mgr.Scan(ctx, first.ID, "STU0002"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Next(first.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Confirm(ctx, first.ID, attendance.CategoryNone, "", false); err != nil {
		t.Fatal(err)
	}

	// A session opened later inherits the commit through the ledger sync.
	second := openSession(t, mgr)
	_, err := mgr.Scan(ctx, second.ID, "STU0002")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("err = %v, want ErrAlreadyProcessed", err)
	}
}

func TestCloseUnknownSession(t *testing.T) {
	mgr := newTestManager(&memLedger{clock: time.Now()})
	if err := mgr.Close("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if _, err := mgr.Scan(context.Background(), "nope", "STU0001"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}
