package catalog

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/syllabus/internal/domain"
)

func notFoundPlaceholder(lesson domain.Lesson, attempted []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", lesson.Title)
	b.WriteString("> **Lesson content not found.**\n")
	b.WriteString(">\n")
	if len(attempted) == 0 {
		fmt.Fprintf(&b, "> No content provider is configured for `%s`.\n", lesson.ContentRef)
		return b.String()
	}
	b.WriteString("> Looked in:\n")
	b.WriteString(">\n")
	for _, loc := range attempted {
		fmt.Fprintf(&b, "> - `%s`\n", loc)
	}
	return b.String()
}

func errorPlaceholder(lesson domain.Lesson, err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", lesson.Title)
	b.WriteString("> **Error loading lesson content.**\n")
	b.WriteString(">\n")
	fmt.Fprintf(&b, "> %s\n", err.Error())
	return b.String()
}
