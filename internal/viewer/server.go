// Package viewer serves lessons over HTTP on the loopback interface so they
// can be read in a browser.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/syllabus/internal/catalog"
	"github.com/felixgeelhaar/syllabus/internal/domain"
	"github.com/felixgeelhaar/syllabus/internal/progress"
	"github.com/felixgeelhaar/syllabus/internal/render"
)

// Server is the local lesson viewer
type Server struct {
	catalog  *catalog.Catalog
	progress *progress.Store
	renderer *render.Renderer
	server   *http.Server
	router   *http.ServeMux
	version  string
}

// ServerConfig holds the dependencies of a Server
type ServerConfig struct {
	Addr     string
	Version  string
	Catalog  *catalog.Catalog
	Progress *progress.Store
	Renderer *render.Renderer
}

// NewServer creates a viewer server. Catalog and Progress are required.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("viewer: catalog is required")
	}
	if cfg.Progress == nil {
		return nil, errors.New("viewer: progress store is required")
	}
	if cfg.Renderer == nil {
		cfg.Renderer = render.New()
	}

	s := &Server{
		catalog:  cfg.Catalog,
		progress: cfg.Progress,
		renderer: cfg.Renderer,
		router:   http.NewServeMux(),
		version:  cfg.Version,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("GET /v1/health", s.handleHealth)

	s.router.HandleFunc("GET /v1/modules", s.handleListModules)
	s.router.HandleFunc("GET /v1/lessons/{id}", s.handleGetLesson)
	s.router.HandleFunc("GET /v1/lessons/{id}/raw", s.handleGetLessonRaw)
	s.router.HandleFunc("POST /v1/lessons/{id}/complete", s.handleCompleteLesson)

	s.router.HandleFunc("GET /v1/progress", s.handleGetProgress)
	s.router.HandleFunc("PUT /v1/progress/current", s.handleSetCurrent)
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return recoveryMiddleware(correlationIDMiddleware(loggingMiddleware(s.router)))
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start listens and serves until Shutdown is called
func (s *Server) Start() error {
	slog.Info("starting lesson viewer",
		"addr", s.server.Addr,
		"lessons", s.catalog.TotalLessonCount(),
		"progress", s.progress.Path(),
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down lesson viewer")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": s.version,
		"lessons": s.catalog.TotalLessonCount(),
	})
}

// handleIndex renders the course outline as a lesson-styled page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString("# Course Outline\n\n")
	fmt.Fprintf(&b, "%d of %d lessons complete (%.0f%%).\n\n",
		s.progress.CompletedCount(), s.catalog.TotalLessonCount(),
		s.progress.ProgressPercentage(s.catalog.TotalLessonCount()))

	current := s.progress.CurrentLessonID()
	if l, ok := s.catalog.Lesson(current); ok {
		fmt.Fprintf(&b, "> [!INFO]\n> Continue with [%s](/v1/lessons/%s).\n\n", l.Title, l.ID)
	}

	for _, m := range s.catalog.Modules() {
		fmt.Fprintf(&b, "## %d. %s\n\n", m.Order, m.Title)
		if m.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", m.Description)
		}
		for _, l := range m.Lessons {
			mark := " "
			if s.progress.IsLessonCompleted(l.ID) {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] [%s %s](/v1/lessons/%s)\n", mark, l.ID, l.Title, l.ID)
		}
		b.WriteString("\n")
	}

	s.htmlResponse(w, http.StatusOK, s.renderer.Render(b.String()))
}

type lessonSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	Completed bool   `json:"completed"`
}

type moduleSummary struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Order       int             `json:"order"`
	Percentage  float64         `json:"percentage"`
	Lessons     []lessonSummary `json:"lessons"`
}

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	modules := s.catalog.Modules()
	result := make([]moduleSummary, 0, len(modules))
	for _, m := range modules {
		ms := moduleSummary{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Order:       m.Order,
			Percentage:  s.progress.ModulePercentage(m),
			Lessons:     make([]lessonSummary, 0, len(m.Lessons)),
		}
		for _, l := range m.Lessons {
			ms.Lessons = append(ms.Lessons, lessonSummary{
				ID:        l.ID,
				Title:     l.Title,
				Order:     l.Order,
				Completed: s.progress.IsLessonCompleted(l.ID),
			})
		}
		result = append(result, ms)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"modules":       result,
		"total_lessons": s.catalog.TotalLessonCount(),
	})
}

// handleGetLesson renders the lesson and makes it the current one
func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := s.catalog.GetLesson(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusNotFound, "lesson not found", err)
		return
	}

	content := s.catalog.LoadLessonContent(*lesson)
	s.progress.SetCurrentLesson(lesson.ID)

	if next, ok := s.catalog.NextLesson(lesson.ID); ok {
		w.Header().Set("X-Next-Lesson", next.ID)
	}
	if prev, ok := s.catalog.PreviousLesson(lesson.ID); ok {
		w.Header().Set("X-Previous-Lesson", prev.ID)
	}
	s.htmlResponse(w, http.StatusOK, s.renderer.Render(content))
}

func (s *Server) handleGetLessonRaw(w http.ResponseWriter, r *http.Request) {
	lesson, err := s.catalog.GetLesson(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusNotFound, "lesson not found", err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.catalog.LoadLessonContent(*lesson)))
}

func (s *Server) handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := s.catalog.GetLesson(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusNotFound, "lesson not found", err)
		return
	}

	s.progress.MarkLessonComplete(lesson.ID)

	resp := map[string]any{
		"lesson_id":  lesson.ID,
		"completed":  true,
		"percentage": s.progress.ProgressPercentage(s.catalog.TotalLessonCount()),
	}
	if next, ok := s.catalog.NextLesson(lesson.ID); ok {
		resp["next_lesson_id"] = next.ID
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	total := s.catalog.TotalLessonCount()

	warnings := make([]string, 0)
	for _, warning := range s.progress.Warnings() {
		warnings = append(warnings, warning.String())
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"learner_id":        s.progress.Snapshot().LearnerID,
		"completed_lessons": s.progress.CompletedLessons(),
		"completed_count":   s.progress.CompletedCount(),
		"total_lessons":     total,
		"percentage":        s.progress.ProgressPercentage(total),
		"current_lesson_id": s.progress.CurrentLessonID(),
		"warnings":          warnings,
	})
}

func (s *Server) handleSetCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LessonID string `json:"lesson_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.LessonID == "" {
		s.jsonError(w, http.StatusBadRequest, "lesson_id is required", nil)
		return
	}
	if _, ok := s.catalog.Lesson(req.LessonID); !ok {
		s.jsonError(w, http.StatusNotFound, "lesson not found",
			fmt.Errorf("%w: %s", domain.ErrLessonNotFound, req.LessonID))
		return
	}

	s.progress.SetCurrentLesson(req.LessonID)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"current_lesson_id": req.LessonID,
	})
}

// Helper methods

func (s *Server) htmlResponse(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}
