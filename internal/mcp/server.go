// Package mcp exposes the course catalog and learner progress as MCP tools
// over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/syllabus/internal/catalog"
	"github.com/felixgeelhaar/syllabus/internal/domain"
	"github.com/felixgeelhaar/syllabus/internal/progress"
	"github.com/felixgeelhaar/syllabus/internal/render"
)

// Server wraps the MCP server with syllabus tools
type Server struct {
	mcpServer *server.Server
	catalog   *catalog.Catalog
	progress  *progress.Store
	renderer  *render.Renderer
}

// Config contains configuration for the MCP server
type Config struct {
	Version  string
	Catalog  *catalog.Catalog
	Progress *progress.Store
	Renderer *render.Renderer
}

var errNotConfigured = errors.New("syllabus tools are not configured")

// NewServer creates a new MCP server
func NewServer(cfg Config) *Server {
	s := &Server{
		catalog:  cfg.Catalog,
		progress: cfg.Progress,
		renderer: cfg.Renderer,
	}
	if s.renderer == nil {
		s.renderer = render.New()
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s.mcpServer = server.New(server.Info{
		Name:    "syllabus",
		Version: version,
	}, server.WithInstructions(`
Syllabus serves a fixed Go course of ordered modules and lessons and keeps
track of the learner's progress.

Available tools:
- syllabus_modules: List modules and lessons with completion state
- syllabus_lesson: Read a lesson as markdown, optionally rendered to HTML
- syllabus_complete: Mark a lesson complete
- syllabus_set_current: Move the learner's current lesson pointer
- syllabus_progress: Overall completion and current lesson

Lesson IDs look like "02-03" (module 2, lesson 3).
`))

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("syllabus_modules").
		Description("List course modules in order with their lessons and completion state.").
		Handler(s.handleModules)

	s.mcpServer.Tool("syllabus_lesson").
		Description("Get a lesson's metadata and markdown content. Set html to also get rendered HTML.").
		Handler(s.handleLesson)

	s.mcpServer.Tool("syllabus_complete").
		Description("Mark a lesson as completed. Completing a lesson twice has no further effect.").
		Handler(s.handleComplete)

	s.mcpServer.Tool("syllabus_set_current").
		Description("Set the lesson the learner is currently working on.").
		Handler(s.handleSetCurrent)

	s.mcpServer.Tool("syllabus_progress").
		Description("Get overall course progress and the current lesson.").
		Handler(s.handleProgress)
}

// Input/Output types for tools

type ModulesInput struct {
	ModuleID string `json:"module_id,omitempty" jsonschema:"description=Only return this module (e.g. 04-concurrency)"`
}

type LessonInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	Completed bool   `json:"completed"`
}

type ModuleInfo struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Order       int          `json:"order"`
	Percentage  float64      `json:"percentage"`
	Lessons     []LessonInfo `json:"lessons"`
}

type ModulesOutput struct {
	Modules      []ModuleInfo `json:"modules"`
	TotalLessons int          `json:"total_lessons"`
}

type LessonInput struct {
	LessonID   string `json:"lesson_id" jsonschema:"description=Lesson ID such as 02-03"`
	HTML       bool   `json:"html,omitempty" jsonschema:"description=Also return the lesson rendered as an HTML fragment"`
	SetCurrent bool   `json:"set_current,omitempty" jsonschema:"description=Make this the learner's current lesson"`
}

type LessonOutput struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ModuleID         string `json:"module_id"`
	Completed        bool   `json:"completed"`
	Markdown         string `json:"markdown"`
	HTML             string `json:"html,omitempty"`
	PreviousLessonID string `json:"previous_lesson_id,omitempty"`
	NextLessonID     string `json:"next_lesson_id,omitempty"`
}

type CompleteInput struct {
	LessonID string `json:"lesson_id" jsonschema:"description=Lesson ID to mark complete"`
}

type CompleteOutput struct {
	LessonID     string  `json:"lesson_id"`
	Percentage   float64 `json:"percentage"`
	NextLessonID string  `json:"next_lesson_id,omitempty"`
	Message      string  `json:"message"`
}

type SetCurrentInput struct {
	LessonID string `json:"lesson_id" jsonschema:"description=Lesson ID to make current"`
}

type SetCurrentOutput struct {
	CurrentLessonID string `json:"current_lesson_id"`
	Title           string `json:"title"`
}

type ProgressInput struct{}

type ProgressOutput struct {
	CompletedLessons []string `json:"completed_lessons"`
	CompletedCount   int      `json:"completed_count"`
	TotalLessons     int      `json:"total_lessons"`
	Percentage       float64  `json:"percentage"`
	CurrentLessonID  string   `json:"current_lesson_id,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Tool handlers

func (s *Server) ready() error {
	if s.catalog == nil || s.progress == nil {
		return errNotConfigured
	}
	return nil
}

func (s *Server) handleModules(ctx context.Context, input ModulesInput) (ModulesOutput, error) {
	if err := s.ready(); err != nil {
		return ModulesOutput{}, err
	}

	modules := s.catalog.Modules()
	if input.ModuleID != "" {
		m, err := s.catalog.GetModule(input.ModuleID)
		if err != nil {
			return ModulesOutput{}, err
		}
		modules = []domain.Module{*m}
	}

	out := ModulesOutput{
		Modules:      make([]ModuleInfo, 0, len(modules)),
		TotalLessons: s.catalog.TotalLessonCount(),
	}
	for _, m := range modules {
		info := ModuleInfo{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Order:       m.Order,
			Percentage:  s.progress.ModulePercentage(m),
			Lessons:     make([]LessonInfo, 0, len(m.Lessons)),
		}
		for _, l := range m.Lessons {
			info.Lessons = append(info.Lessons, LessonInfo{
				ID:        l.ID,
				Title:     l.Title,
				Order:     l.Order,
				Completed: s.progress.IsLessonCompleted(l.ID),
			})
		}
		out.Modules = append(out.Modules, info)
	}
	return out, nil
}

func (s *Server) handleLesson(ctx context.Context, input LessonInput) (LessonOutput, error) {
	if err := s.ready(); err != nil {
		return LessonOutput{}, err
	}

	lesson, err := s.catalog.GetLesson(input.LessonID)
	if err != nil {
		return LessonOutput{}, err
	}

	content := s.catalog.LoadLessonContent(*lesson)
	out := LessonOutput{
		ID:        lesson.ID,
		Title:     lesson.Title,
		ModuleID:  lesson.ModuleID,
		Completed: s.progress.IsLessonCompleted(lesson.ID),
		Markdown:  content,
	}
	if prev, ok := s.catalog.PreviousLesson(lesson.ID); ok {
		out.PreviousLessonID = prev.ID
	}
	if next, ok := s.catalog.NextLesson(lesson.ID); ok {
		out.NextLessonID = next.ID
	}

	if input.HTML {
		html, err := s.renderer.Fragment(content)
		if err != nil {
			return LessonOutput{}, fmt.Errorf("render lesson %s: %w", lesson.ID, err)
		}
		out.HTML = html
	}

	if input.SetCurrent {
		s.progress.SetCurrentLesson(lesson.ID)
	}

	return out, nil
}

func (s *Server) handleComplete(ctx context.Context, input CompleteInput) (CompleteOutput, error) {
	if err := s.ready(); err != nil {
		return CompleteOutput{}, err
	}

	lesson, err := s.catalog.GetLesson(input.LessonID)
	if err != nil {
		return CompleteOutput{}, err
	}

	s.progress.MarkLessonComplete(lesson.ID)

	total := s.catalog.TotalLessonCount()
	out := CompleteOutput{
		LessonID:   lesson.ID,
		Percentage: s.progress.ProgressPercentage(total),
	}
	if next, ok := s.catalog.NextLesson(lesson.ID); ok {
		out.NextLessonID = next.ID
		out.Message = fmt.Sprintf("Completed %q. Next up: %s %q.", lesson.Title, next.ID, next.Title)
	} else {
		out.Message = fmt.Sprintf("Completed %q. That was the last lesson.", lesson.Title)
	}
	return out, nil
}

func (s *Server) handleSetCurrent(ctx context.Context, input SetCurrentInput) (SetCurrentOutput, error) {
	if err := s.ready(); err != nil {
		return SetCurrentOutput{}, err
	}

	lesson, err := s.catalog.GetLesson(input.LessonID)
	if err != nil {
		return SetCurrentOutput{}, err
	}

	s.progress.SetCurrentLesson(lesson.ID)
	return SetCurrentOutput{
		CurrentLessonID: lesson.ID,
		Title:           lesson.Title,
	}, nil
}

func (s *Server) handleProgress(ctx context.Context, input ProgressInput) (ProgressOutput, error) {
	if err := s.ready(); err != nil {
		return ProgressOutput{}, err
	}

	total := s.catalog.TotalLessonCount()
	out := ProgressOutput{
		CompletedLessons: s.progress.CompletedLessons(),
		CompletedCount:   s.progress.CompletedCount(),
		TotalLessons:     total,
		Percentage:       s.progress.ProgressPercentage(total),
		CurrentLessonID:  s.progress.CurrentLessonID(),
	}
	for _, w := range s.progress.Warnings() {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out, nil
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
