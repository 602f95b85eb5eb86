// Package progress keeps the local learner's completed lessons and current
// lesson pointer, persisted as a single JSON document.
//
// The store loads once on construction and rewrites the whole document after
// every mutation. Persistence problems never reach the caller: a missing or
// unreadable file yields an empty record, and failed writes are retried,
// logged and recorded in Warnings while the in-memory state stays current.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/syllabus/internal/domain"
	"github.com/felixgeelhaar/syllabus/internal/storage/local"
)

const (
	// DefaultPath is the progress file location relative to the working directory
	DefaultPath = "data/progress.json"

	// DefaultSaveAttempts is how many times a save is tried before giving up
	DefaultSaveAttempts = 3

	corruptSuffix = ".corrupt"
)

// Warning records a persistence problem that was handled without an error
type Warning struct {
	Op   string // "load", "backup" or "save"
	Path string
	Err  error
	At   time.Time
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %v", w.Op, w.Path, w.Err)
}

// Store owns the single Progress record for the local learner
type Store struct {
	mu       sync.Mutex
	doc      *local.Document
	progress *domain.Progress
	codec    domain.TimeCodec
	now      func() time.Time
	logger   *slog.Logger
	attempts int
	delay    time.Duration
	retrier  retry.Retry[struct{}]
	warnings []Warning
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger for persistence diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithTimeCodec sets how timestamps are written to and read from the file
func WithTimeCodec(c domain.TimeCodec) Option {
	return func(s *Store) {
		s.codec = c
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithSaveAttempts sets how many times a save is tried (minimum 1)
func WithSaveAttempts(n int) Option {
	return func(s *Store) {
		s.attempts = n
	}
}

// WithRetryDelay sets the initial delay between save attempts
func WithRetryDelay(d time.Duration) Option {
	return func(s *Store) {
		s.delay = d
	}
}

// NewStore opens the progress file at path. It never fails: a missing file
// starts an empty record, and a corrupt one is moved aside to
// path+".corrupt" before starting empty.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		doc:      local.NewDocument(path),
		codec:    domain.DefaultTimeCodec,
		now:      time.Now,
		logger:   slog.Default(),
		attempts: DefaultSaveAttempts,
		delay:    10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.attempts < 1 {
		s.attempts = 1
	}
	if s.delay <= 0 {
		s.delay = time.Millisecond
	}

	s.retrier = retry.New[struct{}](retry.Config{
		MaxAttempts:   s.attempts,
		InitialDelay:  s.delay,
		MaxDelay:      8 * s.delay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable: func(err error) bool {
			return err != nil
		},
	})

	s.progress = s.load()
	return s
}

func (s *Store) load() *domain.Progress {
	var stored StoredProgress
	err := s.doc.Load(&stored)
	if err == nil {
		var p *domain.Progress
		p, err = fromStored(stored, s.codec)
		if err == nil {
			if p.LearnerID == "" {
				p.LearnerID = uuid.NewString()
			}
			return p
		}
		err = fmt.Errorf("%w: %v", local.ErrCorrupt, err)
	}

	switch {
	case errors.Is(err, local.ErrNotFound):
		s.logger.Debug("no progress file, starting fresh", "path", s.doc.Path())
	case errors.Is(err, local.ErrCorrupt):
		s.warn("load", err)
		s.logger.Warn("progress file is corrupt, starting fresh", "path", s.doc.Path(), "error", err)
		if backup, berr := s.doc.Backup(corruptSuffix); berr != nil {
			s.warn("backup", berr)
			s.logger.Error("failed to back up corrupt progress file", "path", s.doc.Path(), "error", berr)
		} else {
			s.logger.Warn("corrupt progress file preserved", "path", s.doc.Path(), "backup", backup)
		}
	default:
		s.warn("load", err)
		s.logger.Warn("failed to read progress file, starting fresh", "path", s.doc.Path(), "error", err)
	}

	return domain.NewProgress(uuid.NewString(), s.now())
}

// save rewrites the document; the caller holds s.mu
func (s *Store) save() {
	stored := toStored(s.progress, s.codec)
	_, err := s.retrier.Do(context.Background(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.doc.Save(stored)
	})
	if err != nil {
		s.warn("save", err)
		s.logger.Error("failed to save progress", "path", s.doc.Path(), "attempts", s.attempts, "error", err)
	}
}

func (s *Store) warn(op string, err error) {
	s.warnings = append(s.warnings, Warning{Op: op, Path: s.doc.Path(), Err: err, At: s.now()})
}

// MarkLessonComplete adds the lesson to the completed set and persists.
// Marking an already completed lesson changes nothing and skips the write.
func (s *Store) MarkLessonComplete(lessonID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.progress.Complete(lessonID, s.now()) {
		return
	}
	s.save()
}

// IsLessonCompleted reports whether the lesson has been completed
func (s *Store) IsLessonCompleted(lessonID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.IsCompleted(lessonID)
}

// SetCurrentLesson moves the current lesson pointer and persists
func (s *Store) SetCurrentLesson(lessonID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress.SetCurrent(lessonID, s.now())
	s.save()
}

// CurrentLessonID returns the current lesson, or "" if none was set
func (s *Store) CurrentLessonID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.CurrentLessonID
}

// ProgressPercentage returns the completed share of totalLessons as a
// percentage. A non-positive total yields 0.
func (s *Store) ProgressPercentage(totalLessons int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Percentage(totalLessons)
}

// ModulePercentage returns the completed share of the module's lessons
func (s *Store) ModulePercentage(module domain.Module) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := module.LessonCount()
	if total == 0 {
		return 0
	}
	done := 0
	for _, l := range module.Lessons {
		if s.progress.IsCompleted(l.ID) {
			done++
		}
	}
	return float64(done) / float64(total) * 100
}

// CompletedLessons returns the completed lesson IDs, sorted
func (s *Store) CompletedLessons() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.CompletedIDs()
}

// CompletedCount returns the number of completed lessons
func (s *Store) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.progress.Completed)
}

// Snapshot returns a copy of the current record
func (s *Store) Snapshot() domain.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}

// Reset clears completed lessons and the current pointer, keeping the
// learner ID, and persists.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress = domain.NewProgress(s.progress.LearnerID, s.now())
	s.save()
}

// Warnings returns the persistence problems handled so far, oldest first
func (s *Store) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Warning(nil), s.warnings...)
}

// Path returns the progress file location
func (s *Store) Path() string {
	return s.doc.Path()
}
