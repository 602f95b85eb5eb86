package main

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/syllabus/internal/catalog"
	"github.com/felixgeelhaar/syllabus/internal/config"
	"github.com/felixgeelhaar/syllabus/internal/domain"
	"github.com/felixgeelhaar/syllabus/internal/progress"
	"github.com/felixgeelhaar/syllabus/internal/render"
)

// app holds the components every command works with
type app struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	progress *progress.Store
	renderer *render.Renderer
	out      io.Writer
	errOut   io.Writer
}

func newApp(cfg *config.Config, out, errOut io.Writer) (*app, error) {
	cat, err := catalog.Build(catalog.WithResolver(catalog.NewResolver(
		catalog.NewBundledProvider(),
		catalog.NewDirProvider(cfg.Content.BaseDir),
	)))
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	return &app{
		cfg:      cfg,
		catalog:  cat,
		progress: progress.NewStore(cfg.Progress.Path, progress.WithSaveAttempts(cfg.Progress.SaveAttempts)),
		renderer: render.New(render.WithTitle(cfg.Render.Title)),
		out:      out,
		errOut:   errOut,
	}, nil
}

// lesson looks up id, returning an error listing how to find valid IDs
func (a *app) lesson(id string) (domain.Lesson, error) {
	l, err := a.catalog.GetLesson(id)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("%w (run 'syllabus outline' to list lessons)", err)
	}
	return *l, nil
}

// upNext is the lesson after the current one, or the first incomplete
// lesson when nothing is current.
func (a *app) upNext() (domain.Lesson, bool) {
	if current := a.progress.CurrentLessonID(); current != "" {
		if _, ok := a.catalog.Lesson(current); ok {
			return a.catalog.NextLesson(current)
		}
	}
	for _, l := range a.catalog.Lessons() {
		if !a.progress.IsLessonCompleted(l.ID) {
			return l, true
		}
	}
	return domain.Lesson{}, false
}

// flushWarnings reports persistence problems the store absorbed
func (a *app) flushWarnings() {
	for _, w := range a.progress.Warnings() {
		fmt.Fprintln(a.errOut, warnStyle.Render("warning: "+w.String()))
	}
}
