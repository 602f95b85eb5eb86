package progress

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/syllabus/internal/domain"
)

func newTestStore(t *testing.T, path string, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithRetryDelay(time.Millisecond)}, opts...)
	return NewStore(path, opts...)
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 3, 1, 9, 30, 0, 123_000_000, time.UTC)
	return func() time.Time { return at }
}

func TestNewStore_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "progress.json")
	s := newTestStore(t, path)

	if s.CompletedCount() != 0 {
		t.Errorf("CompletedCount() = %d, want 0", s.CompletedCount())
	}
	if s.CurrentLessonID() != "" {
		t.Errorf("CurrentLessonID() = %q, want empty", s.CurrentLessonID())
	}
	if len(s.Warnings()) != 0 {
		t.Errorf("Warnings() = %v, want none for a missing file", s.Warnings())
	}
	if s.Snapshot().LearnerID == "" {
		t.Error("fresh record should have a learner ID")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("NewStore() should not write until the first mutation")
	}
}

func TestStore_MarkLessonComplete_Idempotent(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "progress.json"))

	s.MarkLessonComplete("01-01")
	once := s.CompletedLessons()
	s.MarkLessonComplete("01-01")
	twice := s.CompletedLessons()

	if !s.IsLessonCompleted("01-01") {
		t.Error("IsLessonCompleted(01-01) = false, want true")
	}
	if len(once) != 1 || len(twice) != 1 || once[0] != twice[0] {
		t.Errorf("completed after one call = %v, after two = %v", once, twice)
	}
}

func TestStore_MarkLessonComplete_RepeatSkipsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	s := newTestStore(t, path)

	s.MarkLessonComplete("01-01")
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove progress file: %v", err)
	}

	s.MarkLessonComplete("01-01")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("completing an already completed lesson should not rewrite the file")
	}
}

func TestStore_IsLessonCompleted_Unknown(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "progress.json"))
	if s.IsLessonCompleted("99-99") {
		t.Error("IsLessonCompleted(99-99) = true, want false")
	}
}

func TestStore_ProgressPercentage(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "progress.json"))
	for _, id := range []string{"01-01", "01-02", "01-03", "01-04", "01-05"} {
		s.MarkLessonComplete(id)
	}

	tests := []struct {
		total int
		want  float64
	}{
		{23, 21.739130434782609},
		{5, 100},
		{10, 50},
		{0, 0},
		{-1, 0},
	}

	for _, tt := range tests {
		got := s.ProgressPercentage(tt.total)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ProgressPercentage(%d) = %v, want %v", tt.total, got, tt.want)
		}
	}

	if got := s.ProgressPercentage(23); math.Round(got*100)/100 != 21.74 {
		t.Errorf("ProgressPercentage(23) rounded = %.2f, want 21.74", got)
	}
}

func TestStore_ModulePercentage(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "progress.json"))
	module := domain.Module{
		ID: "04-concurrency",
		Lessons: []domain.Lesson{
			{ID: "04-01"}, {ID: "04-02"}, {ID: "04-03"}, {ID: "04-04"},
		},
	}

	s.MarkLessonComplete("04-01")
	s.MarkLessonComplete("01-01")

	if got := s.ModulePercentage(module); got != 25 {
		t.Errorf("ModulePercentage() = %v, want 25", got)
	}
	if got := s.ModulePercentage(domain.Module{ID: "empty"}); got != 0 {
		t.Errorf("ModulePercentage(empty) = %v, want 0", got)
	}
}

func TestStore_SetCurrentLesson(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "progress.json"))

	s.SetCurrentLesson("02-03")
	if got := s.CurrentLessonID(); got != "02-03" {
		t.Errorf("CurrentLessonID() = %q, want 02-03", got)
	}

	s.SetCurrentLesson("02-04")
	if got := s.CurrentLessonID(); got != "02-04" {
		t.Errorf("CurrentLessonID() = %q, want 02-04", got)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "progress.json")

	first := newTestStore(t, path)
	first.MarkLessonComplete("01-01")
	first.MarkLessonComplete("02-03")
	first.SetCurrentLesson("02-04")
	learner := first.Snapshot().LearnerID

	second := newTestStore(t, path)

	if got := second.CompletedLessons(); len(got) != 2 || got[0] != "01-01" || got[1] != "02-03" {
		t.Errorf("CompletedLessons() = %v, want [01-01 02-03]", got)
	}
	if got := second.CurrentLessonID(); got != "02-04" {
		t.Errorf("CurrentLessonID() = %q, want 02-04", got)
	}
	if got := second.Snapshot().LearnerID; got != learner {
		t.Errorf("LearnerID = %q, want %q", got, learner)
	}
	if len(second.Warnings()) != 0 {
		t.Errorf("Warnings() = %v, want none", second.Warnings())
	}
}

func TestStore_PersistedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	s := newTestStore(t, path, WithClock(fixedClock()))

	s.MarkLessonComplete("01-02")
	s.MarkLessonComplete("01-01")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read progress file: %v", err)
	}

	var stored StoredProgress
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("progress file is not valid JSON: %v", err)
	}
	if len(stored.CompletedLessons) != 2 || stored.CompletedLessons[0] != "01-01" {
		t.Errorf("completed_lessons = %v, want sorted [01-01 01-02]", stored.CompletedLessons)
	}
	want := "2024-03-01T09:30:00.123Z"
	if stored.UpdatedAt != want {
		t.Errorf("updated_at = %q, want %q", stored.UpdatedAt, want)
	}
	if stored.CompletedAt["01-01"] != want {
		t.Errorf("completed_at[01-01] = %q, want %q", stored.CompletedAt["01-01"], want)
	}
	if strings.Contains(string(data), "current_lesson_id") {
		t.Error("current_lesson_id should be omitted when unset")
	}
}

type unixCodec struct{}

func (unixCodec) Format(t time.Time) string { return t.UTC().Format(time.UnixDate) }
func (unixCodec) Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.UnixDate, s)
}

func TestStore_WithTimeCodec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	s := newTestStore(t, path, WithTimeCodec(unixCodec{}), WithClock(fixedClock()))
	s.SetCurrentLesson("01-01")

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "Fri Mar  1 09:30:00 UTC 2024") {
		t.Errorf("expected custom codec format in %s", data)
	}

	reloaded := newTestStore(t, path, WithTimeCodec(unixCodec{}))
	if reloaded.CurrentLessonID() != "01-01" {
		t.Errorf("CurrentLessonID() = %q, want 01-01", reloaded.CurrentLessonID())
	}
}

func TestStore_CorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", "{not valid json"},
		{"empty", ""},
		{"bad timestamp", `{"learner_id":"x","completed_lessons":["01-01"],"created_at":"yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "progress.json")
			os.WriteFile(path, []byte(tt.content), 0644)

			s := newTestStore(t, path)

			if s.CompletedCount() != 0 || s.CurrentLessonID() != "" {
				t.Errorf("expected empty progress, got %+v", s.Snapshot())
			}
			warnings := s.Warnings()
			if len(warnings) == 0 || warnings[0].Op != "load" {
				t.Errorf("Warnings() = %v, want a load warning", warnings)
			}

			backup, err := os.ReadFile(path + ".corrupt")
			if err != nil {
				t.Fatalf("corrupt file not preserved: %v", err)
			}
			if string(backup) != tt.content {
				t.Errorf("backup = %q, want %q", backup, tt.content)
			}
		})
	}
}

func TestStore_CorruptFile_RecoversOnNextSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	os.WriteFile(path, []byte("]]"), 0644)

	s := newTestStore(t, path)
	s.MarkLessonComplete("01-01")

	reloaded := newTestStore(t, path)
	if !reloaded.IsLessonCompleted("01-01") {
		t.Error("progress written after recovery should load")
	}
	if len(reloaded.Warnings()) != 0 {
		t.Errorf("Warnings() = %v, want none", reloaded.Warnings())
	}
}

func TestStore_MissingLearnerID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	os.WriteFile(path, []byte(`{"completed_lessons":["01-01"]}`), 0644)

	s := newTestStore(t, path)
	if !s.IsLessonCompleted("01-01") {
		t.Error("IsLessonCompleted(01-01) = false, want true")
	}
	if s.Snapshot().LearnerID == "" {
		t.Error("missing learner ID should be filled in")
	}
}

func TestStore_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
		t.Fatal(err)
	}

	s := newTestStore(t, filepath.Join(blocker, "progress.json"), WithSaveAttempts(2))

	s.MarkLessonComplete("01-01")
	s.SetCurrentLesson("01-02")

	if !s.IsLessonCompleted("01-01") {
		t.Error("in-memory state should survive a failed write")
	}
	if s.CurrentLessonID() != "01-02" {
		t.Errorf("CurrentLessonID() = %q, want 01-02", s.CurrentLessonID())
	}

	warnings := s.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("Warnings() returned %d, want 2", len(warnings))
	}
	for _, w := range warnings {
		if w.Op != "save" || w.Err == nil {
			t.Errorf("warning = %v, want a save failure", w)
		}
	}
}

func TestStore_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	s := newTestStore(t, path)
	s.MarkLessonComplete("01-01")
	s.SetCurrentLesson("01-02")
	learner := s.Snapshot().LearnerID

	s.Reset()

	if s.CompletedCount() != 0 || s.CurrentLessonID() != "" {
		t.Errorf("after Reset() got %+v, want empty", s.Snapshot())
	}
	if s.Snapshot().LearnerID != learner {
		t.Error("Reset() should keep the learner ID")
	}

	reloaded := newTestStore(t, path)
	if reloaded.CompletedCount() != 0 {
		t.Error("Reset() should be persisted")
	}
}

func TestStore_Snapshot_IsCopy(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "progress.json"))
	s.MarkLessonComplete("01-01")

	snap := s.Snapshot()
	snap.Completed["01-02"] = time.Now()

	if s.IsLessonCompleted("01-02") {
		t.Error("mutating a snapshot should not affect the store")
	}
}

func TestStore_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if got := newTestStore(t, path).Path(); got != path {
		t.Errorf("Path() = %v, want %v", got, path)
	}
}
