package catalog

import (
	_ "embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/felixgeelhaar/syllabus/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed curriculum.yaml
var curriculumYAML []byte

// Definition is the YAML structure of the curriculum
type Definition struct {
	Modules []ModuleDefinition `yaml:"modules"`
}

// ModuleDefinition represents one module entry in the curriculum
type ModuleDefinition struct {
	ID          string             `yaml:"id"`
	Title       string             `yaml:"title"`
	Description string             `yaml:"description"`
	Order       int                `yaml:"order"`
	Lessons     []LessonDefinition `yaml:"lessons"`
}

// LessonDefinition represents one lesson entry within a module.
// File is relative to the module directory.
type LessonDefinition struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
	File  string `yaml:"file"`
}

// ParseDefinition parses a curriculum definition
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse curriculum: %w", err)
	}
	return def, nil
}

// DefaultDefinition returns the curriculum shipped with the binary
func DefaultDefinition() (Definition, error) {
	return ParseDefinition(curriculumYAML)
}

// modules converts the definition into validated domain modules sorted by order
func (d Definition) modules() ([]domain.Module, error) {
	modules := make([]domain.Module, 0, len(d.Modules))
	moduleIDs := make(map[string]bool, len(d.Modules))
	moduleOrders := make(map[int]string, len(d.Modules))
	lessonIDs := make(map[string]string)

	for _, md := range d.Modules {
		if md.ID == "" {
			return nil, fmt.Errorf("module at order %d has no id", md.Order)
		}
		if moduleIDs[md.ID] {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateModuleID, md.ID)
		}
		moduleIDs[md.ID] = true

		if other, ok := moduleOrders[md.Order]; ok {
			return nil, fmt.Errorf("%w: %d used by %s and %s", domain.ErrDuplicateModuleOrder, md.Order, other, md.ID)
		}
		moduleOrders[md.Order] = md.ID

		module := domain.Module{
			ID:          md.ID,
			Title:       md.Title,
			Description: md.Description,
			Order:       md.Order,
			Lessons:     make([]domain.Lesson, 0, len(md.Lessons)),
		}

		lessonOrders := make(map[int]string, len(md.Lessons))
		for _, ld := range md.Lessons {
			if ld.ID == "" {
				return nil, fmt.Errorf("lesson at order %d in module %s has no id", ld.Order, md.ID)
			}
			if owner, ok := lessonIDs[ld.ID]; ok {
				return nil, fmt.Errorf("%w: %s in %s and %s", domain.ErrDuplicateLessonID, ld.ID, owner, md.ID)
			}
			lessonIDs[ld.ID] = md.ID

			if other, ok := lessonOrders[ld.Order]; ok {
				return nil, fmt.Errorf("%w: %d used by %s and %s in module %s", domain.ErrDuplicateLessonOrder, ld.Order, other, ld.ID, md.ID)
			}
			lessonOrders[ld.Order] = ld.ID

			ref := path.Join(md.ID, ld.File)
			if ld.File == "" || path.Dir(ref) != md.ID || !fs.ValidPath(ref) {
				return nil, fmt.Errorf("%w: lesson %s file %q", domain.ErrInvalidContentRef, ld.ID, ld.File)
			}

			module.Lessons = append(module.Lessons, domain.Lesson{
				ID:         ld.ID,
				Title:      ld.Title,
				ModuleID:   md.ID,
				Order:      ld.Order,
				ContentRef: ref,
			})
		}

		modules = append(modules, module)
	}

	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Order < modules[j].Order
	})

	// Orders must run 1..n with no gaps
	for i, m := range modules {
		if m.Order != i+1 {
			return nil, fmt.Errorf("%w: module %s has order %d, want %d", domain.ErrModuleOrderGap, m.ID, m.Order, i+1)
		}
	}

	return modules, nil
}
