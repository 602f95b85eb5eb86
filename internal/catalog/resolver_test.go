package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/felixgeelhaar/syllabus/internal/domain"
)

var testLesson = domain.Lesson{
	ID:         "02-03",
	Title:      "Control Flow",
	ModuleID:   "02-language-basics",
	Order:      3,
	ContentRef: "02-language-basics/lesson-03-control-flow.md",
}

func writeLesson(t *testing.T, root, ref, text string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("create lesson dir: %v", err)
	}
	if err := os.WriteFile(p, []byte(text), 0644); err != nil {
		t.Fatalf("write lesson: %v", err)
	}
}

func TestResolver_BundledWins(t *testing.T) {
	root := t.TempDir()
	writeLesson(t, root, testLesson.ContentRef, "from disk")

	bundled := fstest.MapFS{
		"lessons/" + testLesson.ContentRef: {Data: []byte("from bundle")},
	}
	r := NewResolver(NewFSProvider("bundled", bundled, "lessons"), NewDirProvider(root))

	got, err := r.Resolve(testLesson)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Text != "from bundle" {
		t.Errorf("Text = %q, want %q", got.Text, "from bundle")
	}
	if got.Provider != "bundled" {
		t.Errorf("Provider = %q, want bundled", got.Provider)
	}
	if len(got.Attempted) != 1 {
		t.Errorf("Attempted = %v, want one location", got.Attempted)
	}
}

func TestLoadLessonContent_FilesystemFallback(t *testing.T) {
	root := t.TempDir()
	text := "# Control Flow\n\nOnly on disk.\n"
	writeLesson(t, root, testLesson.ContentRef, text)

	r := NewResolver(NewFSProvider("bundled", fstest.MapFS{}, "lessons"), NewDirProvider(root))
	c := catalogWith(t, r)

	got := c.LoadLessonContent(testLesson)
	if got != text {
		t.Errorf("LoadLessonContent() = %q, want verbatim %q", got, text)
	}

	res, err := r.Resolve(testLesson)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Provider != "filesystem" {
		t.Errorf("Provider = %q, want filesystem", res.Provider)
	}
	if len(res.Attempted) != 2 {
		t.Errorf("Attempted = %v, want two locations", res.Attempted)
	}
}

func TestLoadLessonContent_NotFoundPlaceholder(t *testing.T) {
	root := t.TempDir()
	dir := NewDirProvider(root)
	r := NewResolver(NewFSProvider("bundled", fstest.MapFS{}, "lessons"), dir)
	c := catalogWith(t, r)

	got := c.LoadLessonContent(testLesson)

	if !strings.Contains(got, testLesson.Title) {
		t.Errorf("placeholder missing lesson title:\n%s", got)
	}
	wantPath := dir.Location(testLesson.ContentRef)
	if !strings.Contains(got, wantPath) {
		t.Errorf("placeholder missing attempted path %q:\n%s", wantPath, got)
	}
	if !strings.Contains(got, "not found") {
		t.Errorf("placeholder does not say not found:\n%s", got)
	}

	_, err := r.Resolve(testLesson)
	if !errors.Is(err, ErrContentNotFound) {
		t.Errorf("Resolve() error = %v, want ErrContentNotFound", err)
	}
}

func TestLoadLessonContent_ReadErrorPlaceholder(t *testing.T) {
	root := t.TempDir()
	// A directory where the file should be makes the read fail with
	// something other than not-exist.
	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(testLesson.ContentRef)), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	r := NewResolver(NewDirProvider(root))
	c := catalogWith(t, r)

	got := c.LoadLessonContent(testLesson)
	if !strings.Contains(got, "Error loading lesson content") {
		t.Errorf("expected error placeholder, got:\n%s", got)
	}
	if !strings.Contains(got, testLesson.Title) {
		t.Errorf("error placeholder missing lesson title:\n%s", got)
	}

	_, err := r.Resolve(testLesson)
	if err == nil || errors.Is(err, ErrContentNotFound) {
		t.Errorf("Resolve() error = %v, want read error", err)
	}
}

func TestLoadLessonContent_InvalidRef(t *testing.T) {
	r := NewResolver(NewDirProvider(t.TempDir()))
	c := catalogWith(t, r)

	lesson := testLesson
	lesson.ContentRef = "../../etc/passwd"

	got := c.LoadLessonContent(lesson)
	if !strings.Contains(got, "Error loading lesson content") {
		t.Errorf("expected error placeholder for invalid ref, got:\n%s", got)
	}
}

func TestLoadLessonContent_NoProviders(t *testing.T) {
	c := catalogWith(t, NewResolver())

	got := c.LoadLessonContent(testLesson)
	if !strings.Contains(got, testLesson.ContentRef) {
		t.Errorf("placeholder missing content ref:\n%s", got)
	}
}

func TestResolver_Providers(t *testing.T) {
	got := DefaultResolver().Providers()
	if len(got) != 2 || got[0] != "bundled" || got[1] != "filesystem" {
		t.Errorf("Providers() = %v, want [bundled filesystem]", got)
	}
}

func TestDirProvider_Location(t *testing.T) {
	p := NewDirProvider("lessons")
	want := filepath.Join("lessons", "01-getting-started", "lesson-01-installation.md")
	if got := p.Location("01-getting-started/lesson-01-installation.md"); got != want {
		t.Errorf("Location() = %q, want %q", got, want)
	}
}

func catalogWith(t *testing.T, r *Resolver) *Catalog {
	t.Helper()
	c, err := BuildFrom(validDefinition(), WithResolver(r))
	if err != nil {
		t.Fatalf("BuildFrom() error = %v", err)
	}
	return c
}
