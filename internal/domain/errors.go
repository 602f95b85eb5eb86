package domain

import "errors"

// Curriculum errors
var (
	ErrModuleNotFound = errors.New("module not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

// Curriculum definition errors
var (
	ErrDuplicateModuleOrder = errors.New("duplicate module order")
	ErrModuleOrderGap       = errors.New("module orders are not contiguous")
	ErrDuplicateLessonOrder = errors.New("duplicate lesson order")
	ErrDuplicateLessonID    = errors.New("duplicate lesson id")
	ErrDuplicateModuleID    = errors.New("duplicate module id")
	ErrInvalidContentRef    = errors.New("invalid content reference")
)
