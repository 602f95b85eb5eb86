package domain

import (
	"sort"
	"time"
)

// Progress is the learner's durable record: the set of completed lessons
// and the lesson they are currently on.
type Progress struct {
	LearnerID       string
	Completed       map[string]time.Time // lesson ID -> completion time
	CurrentLessonID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewProgress returns an empty progress record
func NewProgress(learnerID string, now time.Time) *Progress {
	return &Progress{
		LearnerID: learnerID,
		Completed: make(map[string]time.Time),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsCompleted reports whether the lesson is in the completed set
func (p *Progress) IsCompleted(lessonID string) bool {
	_, ok := p.Completed[lessonID]
	return ok
}

// Complete adds the lesson to the completed set.
// Returns false if it was already there, in which case nothing changes.
func (p *Progress) Complete(lessonID string, at time.Time) bool {
	if p.Completed == nil {
		p.Completed = make(map[string]time.Time)
	}
	if _, ok := p.Completed[lessonID]; ok {
		return false
	}
	p.Completed[lessonID] = at
	p.UpdatedAt = at
	return true
}

// SetCurrent moves the current lesson pointer
func (p *Progress) SetCurrent(lessonID string, at time.Time) {
	p.CurrentLessonID = lessonID
	p.UpdatedAt = at
}

// CompletedIDs returns the completed lesson IDs in sorted order
func (p *Progress) CompletedIDs() []string {
	ids := make([]string, 0, len(p.Completed))
	for id := range p.Completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Percentage returns completed/total*100. A non-positive total yields 0.
func (p *Progress) Percentage(totalLessons int) float64 {
	if totalLessons <= 0 {
		return 0
	}
	return float64(len(p.Completed)) / float64(totalLessons) * 100
}

// Clone returns a deep copy
func (p *Progress) Clone() Progress {
	c := *p
	c.Completed = make(map[string]time.Time, len(p.Completed))
	for id, at := range p.Completed {
		c.Completed[id] = at
	}
	return c
}
