package domain

import "strings"

// Module is an ordered group of lessons within the curriculum
type Module struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Order       int      `json:"order"`
	Lessons     []Lesson `json:"lessons"`
}

// LessonCount returns the number of lessons in the module
func (m Module) LessonCount() int {
	return len(m.Lessons)
}

// Lesson returns the lesson with the given ID if the module owns it
func (m Module) Lesson(id string) (Lesson, bool) {
	for _, l := range m.Lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

// Clone returns a deep copy so callers cannot mutate catalog state
func (m Module) Clone() Module {
	m.Lessons = append([]Lesson(nil), m.Lessons...)
	return m
}

// Lesson is a single unit of content.
// ContentRef is relative to the content base directory: "<module-id>/<lesson-file>".
type Lesson struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ModuleID   string `json:"module_id"`
	Order      int    `json:"order"`
	ContentRef string `json:"content_ref"`
}

// Slug returns the file part of the content reference
func (l Lesson) Slug() string {
	if i := strings.LastIndex(l.ContentRef, "/"); i >= 0 {
		return l.ContentRef[i+1:]
	}
	return l.ContentRef
}
