// Package catalog serves the fixed curriculum of modules and lessons and
// resolves each lesson's raw markdown.
//
// A Catalog is built once and never modified, so it is safe to share
// between goroutines without locking.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/syllabus/internal/domain"
)

type lessonPos struct {
	module int
	lesson int
}

// Catalog is the immutable module/lesson graph
type Catalog struct {
	modules     []domain.Module
	moduleIndex map[string]int
	lessonIndex map[string]int // lesson ID -> index into order
	order       []lessonPos    // curriculum order across modules
	resolver    *Resolver
	logger      *slog.Logger
}

// Option configures a Catalog
type Option func(*Catalog)

// WithResolver replaces the default bundled-then-filesystem resolver
func WithResolver(r *Resolver) Option {
	return func(c *Catalog) {
		c.resolver = r
	}
}

// WithLogger sets the logger used for content resolution diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = l
	}
}

// Build constructs the catalog from the curriculum shipped with the binary
func Build(opts ...Option) (*Catalog, error) {
	def, err := DefaultDefinition()
	if err != nil {
		return nil, err
	}
	return BuildFrom(def, opts...)
}

// MustBuild is like Build but panics if the shipped curriculum is invalid
func MustBuild(opts ...Option) *Catalog {
	c, err := Build(opts...)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// BuildFrom constructs a catalog from def, validating every ordering and
// uniqueness rule.
func BuildFrom(def Definition, opts ...Option) (*Catalog, error) {
	modules, err := def.modules()
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	c := &Catalog{
		modules:     modules,
		moduleIndex: make(map[string]int, len(modules)),
		lessonIndex: make(map[string]int),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		c.resolver = DefaultResolver()
	}
	c.resolver.logger = c.logger

	for mi, m := range modules {
		c.moduleIndex[m.ID] = mi
		for li, l := range m.Lessons {
			c.lessonIndex[l.ID] = len(c.order)
			c.order = append(c.order, lessonPos{module: mi, lesson: li})
		}
	}

	return c, nil
}

// Modules returns all modules in display order
func (c *Catalog) Modules() []domain.Module {
	out := make([]domain.Module, len(c.modules))
	for i, m := range c.modules {
		out[i] = m.Clone()
	}
	return out
}

// Module returns the module with the given ID
func (c *Catalog) Module(id string) (domain.Module, bool) {
	i, ok := c.moduleIndex[id]
	if !ok {
		return domain.Module{}, false
	}
	return c.modules[i].Clone(), true
}

// GetModule returns the module with the given ID or domain.ErrModuleNotFound
func (c *Catalog) GetModule(id string) (*domain.Module, error) {
	m, ok := c.Module(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModuleNotFound, id)
	}
	return &m, nil
}

// Lesson returns the lesson with the given ID from any module
func (c *Catalog) Lesson(id string) (domain.Lesson, bool) {
	i, ok := c.lessonIndex[id]
	if !ok {
		return domain.Lesson{}, false
	}
	return c.at(c.order[i]), true
}

// GetLesson returns the lesson with the given ID or domain.ErrLessonNotFound
func (c *Catalog) GetLesson(id string) (*domain.Lesson, error) {
	l, ok := c.Lesson(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLessonNotFound, id)
	}
	return &l, nil
}

// Lessons returns every lesson in curriculum order
func (c *Catalog) Lessons() []domain.Lesson {
	out := make([]domain.Lesson, len(c.order))
	for i, pos := range c.order {
		out[i] = c.at(pos)
	}
	return out
}

// TotalLessonCount returns the number of lessons across all modules
func (c *Catalog) TotalLessonCount() int {
	total := 0
	for _, m := range c.modules {
		total += len(m.Lessons)
	}
	return total
}

// NextLesson returns the lesson after id in curriculum order, crossing
// module boundaries. ok is false when id is the last lesson or unknown.
func (c *Catalog) NextLesson(id string) (domain.Lesson, bool) {
	return c.step(id, 1)
}

// PreviousLesson returns the lesson before id in curriculum order
func (c *Catalog) PreviousLesson(id string) (domain.Lesson, bool) {
	return c.step(id, -1)
}

func (c *Catalog) step(id string, delta int) (domain.Lesson, bool) {
	i, ok := c.lessonIndex[id]
	if !ok {
		return domain.Lesson{}, false
	}
	j := i + delta
	if j < 0 || j >= len(c.order) {
		return domain.Lesson{}, false
	}
	return c.at(c.order[j]), true
}

func (c *Catalog) at(pos lessonPos) domain.Lesson {
	return c.modules[pos.module].Lessons[pos.lesson]
}

// Stats holds counts about the curriculum
type Stats struct {
	ModuleCount     int
	LessonCount     int
	LessonsByModule map[string]int
}

// Stats returns counts about the curriculum
func (c *Catalog) Stats() Stats {
	stats := Stats{
		ModuleCount:     len(c.modules),
		LessonCount:     c.TotalLessonCount(),
		LessonsByModule: make(map[string]int, len(c.modules)),
	}
	for _, m := range c.modules {
		stats.LessonsByModule[m.ID] = len(m.Lessons)
	}
	return stats
}

// Resolver returns the content resolver used by LoadLessonContent
func (c *Catalog) Resolver() *Resolver {
	return c.resolver
}

// LoadLessonContent returns the raw markdown for lesson. It never fails:
// when no provider has the content, or reading it fails, a placeholder
// document describing the problem is returned instead.
func (c *Catalog) LoadLessonContent(lesson domain.Lesson) string {
	result, err := c.resolver.Resolve(lesson)
	if err == nil {
		return result.Text
	}
	if errors.Is(err, ErrContentNotFound) {
		c.logger.Warn("lesson content not found", "lesson", lesson.ID, "attempted", result.Attempted)
		return notFoundPlaceholder(lesson, result.Attempted)
	}
	return errorPlaceholder(lesson, err)
}
