package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *app) cmdOutline() error {
	current := a.progress.CurrentLessonID()
	total := a.catalog.TotalLessonCount()

	fmt.Fprintln(a.out, titleStyle.Render("Go Course"))
	fmt.Fprintf(a.out, "%d of %d lessons complete\n\n", a.progress.CompletedCount(), total)

	for _, m := range a.catalog.Modules() {
		pct := a.progress.ModulePercentage(m)
		fmt.Fprintf(a.out, "%s  %s %3.0f%%\n",
			moduleStyle.Render(fmt.Sprintf("%d. %s", m.Order, m.Title)),
			renderProgressBar(pct, 10), pct)

		for _, l := range m.Lessons {
			fmt.Fprintln(a.out, "  "+a.lessonLine(l.ID, l.Title, current))
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *app) lessonLine(id, title, current string) string {
	line := id + "  " + title
	switch {
	case id == current:
		return currentStyle.Render("▸ " + line)
	case a.progress.IsLessonCompleted(id):
		return doneStyle.Render("✓ " + line)
	default:
		return pendingStyle.Render("· " + line)
	}
}

func (a *app) cmdLesson(args []string) error {
	var id string
	asHTML := false
	for _, arg := range args {
		switch arg {
		case "--html":
			asHTML = true
		default:
			if strings.HasPrefix(arg, "-") {
				return fmt.Errorf("unknown flag: %s", arg)
			}
			id = arg
		}
	}
	if id == "" {
		return fmt.Errorf("lesson id required (e.g., syllabus lesson 01-01)")
	}

	lesson, err := a.lesson(id)
	if err != nil {
		return err
	}

	markdown := a.catalog.LoadLessonContent(lesson)
	a.progress.SetCurrentLesson(lesson.ID)

	if asHTML {
		fmt.Fprint(a.out, a.renderer.Render(markdown))
	} else {
		fmt.Fprint(a.out, markdown)
		if !strings.HasSuffix(markdown, "\n") {
			fmt.Fprintln(a.out)
		}
	}

	if next, ok := a.catalog.NextLesson(lesson.ID); ok {
		fmt.Fprintf(a.errOut, "\nNext: %s %s (syllabus complete %s)\n", next.ID, next.Title, lesson.ID)
	}
	a.flushWarnings()
	return nil
}

func (a *app) cmdNext() error {
	lesson, ok := a.upNext()
	if !ok {
		fmt.Fprintln(a.out, doneStyle.Render("You have reached the end of the course."))
		return nil
	}
	return a.cmdLesson([]string{lesson.ID})
}

func (a *app) cmdRender(args []string) error {
	var input, output string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a file name", args[i])
			}
			i++
			output = args[i]
		default:
			input = args[i]
		}
	}
	if input == "" {
		return fmt.Errorf("markdown file required (e.g., syllabus render notes.md, or - for stdin)")
	}

	var src []byte
	var err error
	if input == "-" {
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(input)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	html := a.renderer.RenderBytes(src)
	if output == "" {
		_, err = fmt.Fprint(a.out, html)
		return err
	}
	if err := os.WriteFile(output, []byte(html), 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(a.errOut, "Wrote %s\n", output)
	return nil
}

func (a *app) cmdComplete(args []string) error {
	id := a.progress.CurrentLessonID()
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		return errors.New("lesson id required (no current lesson is set)")
	}

	lesson, err := a.lesson(id)
	if err != nil {
		return err
	}

	already := a.progress.IsLessonCompleted(lesson.ID)
	a.progress.MarkLessonComplete(lesson.ID)

	if already {
		fmt.Fprintf(a.out, "%s was already complete\n", lesson.ID)
	} else {
		fmt.Fprintln(a.out, doneStyle.Render(fmt.Sprintf("✓ Completed %s %s", lesson.ID, lesson.Title)))
	}
	fmt.Fprintf(a.out, "Course progress: %s %.1f%%\n",
		renderProgressBar(a.progress.ProgressPercentage(a.catalog.TotalLessonCount()), 20),
		a.progress.ProgressPercentage(a.catalog.TotalLessonCount()))

	if next, ok := a.catalog.NextLesson(lesson.ID); ok {
		fmt.Fprintf(a.out, "Up next: %s %s\n", next.ID, next.Title)
	}
	a.flushWarnings()
	return nil
}

func (a *app) cmdCurrent(args []string) error {
	if len(args) > 0 {
		lesson, err := a.lesson(args[0])
		if err != nil {
			return err
		}
		a.progress.SetCurrentLesson(lesson.ID)
		fmt.Fprintf(a.out, "Current lesson: %s %s\n", lesson.ID, lesson.Title)
		a.flushWarnings()
		return nil
	}

	id := a.progress.CurrentLessonID()
	if id == "" {
		fmt.Fprintln(a.out, "No current lesson. Start with: syllabus next")
		return nil
	}
	lesson, ok := a.catalog.Lesson(id)
	if !ok {
		fmt.Fprintf(a.out, "Current lesson %s is not in this course\n", id)
		return nil
	}
	fmt.Fprintf(a.out, "Current lesson: %s %s\n", lesson.ID, lesson.Title)
	return nil
}

func (a *app) cmdProgress() error {
	total := a.catalog.TotalLessonCount()
	pct := a.progress.ProgressPercentage(total)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Course Progress") + "\n\n")
	fmt.Fprintf(&b, "Completed: %d of %d lessons\n", a.progress.CompletedCount(), total)
	fmt.Fprintf(&b, "Overall:   %s %.1f%%\n", renderProgressBar(pct, 20), pct)

	if id := a.progress.CurrentLessonID(); id != "" {
		if l, ok := a.catalog.Lesson(id); ok {
			fmt.Fprintf(&b, "Current:   %s %s\n", l.ID, l.Title)
		}
	}
	if next, ok := a.upNext(); ok {
		fmt.Fprintf(&b, "Up next:   %s %s\n", next.ID, next.Title)
	}

	b.WriteString("\n")
	for _, m := range a.catalog.Modules() {
		mp := a.progress.ModulePercentage(m)
		fmt.Fprintf(&b, "%-20s %s %3.0f%%\n", m.Title, renderProgressBar(mp, 10), mp)
	}

	fmt.Fprintln(a.out, boxStyle.Render(strings.TrimRight(b.String(), "\n")))

	snap := a.progress.Snapshot()
	fmt.Fprintln(a.out, lipgloss.JoinHorizontal(lipgloss.Top,
		pendingStyle.Render("learner "+snap.LearnerID),
		pendingStyle.Render("  ·  "+a.progress.Path()),
	))
	a.flushWarnings()
	return nil
}

func (a *app) cmdReset(args []string) error {
	confirmed := len(args) > 0 && (args[0] == "--yes" || args[0] == "-y")
	if !confirmed {
		return errors.New("this clears all progress; run 'syllabus reset --yes' to confirm")
	}
	a.progress.Reset()
	fmt.Fprintln(a.out, "Progress cleared")
	a.flushWarnings()
	return nil
}
