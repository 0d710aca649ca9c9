package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/announce"
	"eventdesk/internal/apierr"
	"eventdesk/internal/directory"
	"eventdesk/internal/queue"
)

var ErrAlreadyMarked = apierr.Conflict("student is already marked present today")

// Repository persists ledger entries.
type Repository interface {
	// Insert appends a record, assigning the creation timestamp server-side.
	Insert(ctx context.Context, rec Record) (Record, error)
	// ListByDay returns records for a calendar day, newest first.
	ListByDay(ctx context.Context, day string) ([]Record, error)
	// ExistsOnDay reports whether a student already has a record for day.
	ExistsOnDay(ctx context.Context, studentID, day string) (bool, error)
	// DeleteByDay removes every record for day and returns how many.
	DeleteByDay(ctx context.Context, day string) (int64, error)
}

// Totals are the in-memory aggregates shown on the live dashboard. They are
// updated on every commit and can be rebuilt from the ledger at any time.
type Totals struct {
	Records       int            `json:"records"`
	Participation int            `json:"participation"`
	ByClass       map[string]int `json:"by_class"`
	ByCategory    map[string]int `json:"by_category"`
}

// MarkInput is everything the confirmation workflow supplies at commit time.
type MarkInput struct {
	StudentID     string
	Category      string
	OtherText     string
	Participating bool
}

// Service owns ledger writes and the day's aggregates.
type Service struct {
	repo   Repository
	dir    *directory.Service
	events queue.Queue // nil disables announcements

	mu     sync.Mutex
	totals Totals

	now func() time.Time
}

func NewService(repo Repository, dir *directory.Service, events queue.Queue) *Service {
	s := &Service{repo: repo, dir: dir, events: events, now: time.Now}
	s.totals = emptyTotals()
	return s
}

func emptyTotals() Totals {
	return Totals{ByClass: map[string]int{}, ByCategory: map[string]int{}}
}

// Today returns the current local calendar day.
func (s *Service) Today() string {
	return s.now().Local().Format(DateLayout)
}

// Mark commits one attendance record. The student identifier is re-resolved
// against the directory immediately before the write so a stale workflow
// cannot mark a student who has since been removed or edited away.
func (s *Service) Mark(ctx context.Context, in MarkInput) (Record, error) {
	resolved, err := s.dir.Lookup(ctx, in.StudentID)
	if err != nil {
		return Record{}, err
	}
	if resolved.Student.ID != in.StudentID {
		return Record{}, apierr.Conflict("student record changed, rescan and retry")
	}

	accompaniment, err := ResolveCategory(in.Category, in.OtherText)
	if err != nil {
		return Record{}, err
	}
	participating := in.Participating
	if accompaniment == CategoryNone {
		participating = false
	}

	day := s.Today()
	dup, err := s.repo.ExistsOnDay(ctx, in.StudentID, day)
	if err != nil {
		return Record{}, apierr.Internal("failed to mark attendance")
	}
	if dup {
		return Record{}, ErrAlreadyMarked
	}

	st := resolved.Student
	rec := Record{
		ID:            uuid.NewString(),
		StudentID:     st.ID,
		FullName:      st.FullName,
		Class:         st.Class,
		School:        st.School,
		Email:         st.Email,
		Gender:        st.Gender,
		Program:       st.Program,
		Day:           day,
		Accompaniment: accompaniment,
		Participating: participating,
	}
	rec, err = s.repo.Insert(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrAlreadyMarked) {
			return Record{}, err
		}
		return Record{}, apierr.Internal("failed to mark attendance")
	}

	s.mu.Lock()
	s.totals.Records++
	s.totals.Participation += Participation(accompaniment)
	s.totals.ByClass[rec.Class]++
	s.totals.ByCategory[CategoryBucket(accompaniment)]++
	s.mu.Unlock()

	commitsTotal.WithLabelValues(in.Category).Inc()
	s.announceWelcome(rec)
	return rec, nil
}

// announceWelcome queues the spoken welcome. Best-effort only: a full queue
// or dead redis is logged and forgotten.
func (s *Service) announceWelcome(rec Record) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(announce.Welcome{
		StudentName:   rec.FullName,
		Accompaniment: rec.Accompaniment,
		Program:       rec.Program,
	})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.events.Publish(ctx, queue.Message{Type: "welcome", Body: body}); err != nil {
		log.Printf("welcome announcement dropped for %s: %v", rec.StudentID, err)
	}
}

// ListToday returns today's records, newest first.
func (s *Service) ListToday(ctx context.Context) ([]Record, error) {
	recs, err := s.repo.ListByDay(ctx, s.Today())
	if err != nil {
		return nil, apierr.Internal("failed to load today's attendance")
	}
	return recs, nil
}

// ResetToday deletes today's records only and clears the aggregates. Records
// for other days are untouched.
func (s *Service) ResetToday(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteByDay(ctx, s.Today())
	if err != nil {
		return 0, apierr.Internal("failed to reset today's attendance")
	}
	s.mu.Lock()
	s.totals = emptyTotals()
	s.mu.Unlock()
	return n, nil
}

// Stats returns a copy of the in-memory aggregates.
func (s *Service) Stats() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Totals{
		Records:       s.totals.Records,
		Participation: s.totals.Participation,
		ByClass:       make(map[string]int, len(s.totals.ByClass)),
		ByCategory:    make(map[string]int, len(s.totals.ByCategory)),
	}
	for k, v := range s.totals.ByClass {
		out.ByClass[k] = v
	}
	for k, v := range s.totals.ByCategory {
		out.ByCategory[k] = v
	}
	return out
}

// SyncTotals rebuilds the aggregates from the ledger, used at startup so a
// restarted server picks up the day in progress.
func (s *Service) SyncTotals(ctx context.Context) error {
	recs, err := s.repo.ListByDay(ctx, s.Today())
	if err != nil {
		return err
	}
	totals := emptyTotals()
	for _, rec := range recs {
		totals.Records++
		totals.Participation += Participation(rec.Accompaniment)
		totals.ByClass[rec.Class]++
		totals.ByCategory[CategoryBucket(rec.Accompaniment)]++
	}
	s.mu.Lock()
	s.totals = totals
	s.mu.Unlock()
	return nil
}
