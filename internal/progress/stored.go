package progress

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/syllabus/internal/domain"
)

// StoredProgress is the JSON-serializable progress structure.
// Timestamps are strings written by a domain.TimeCodec.
type StoredProgress struct {
	LearnerID        string            `json:"learner_id"`
	CompletedLessons []string          `json:"completed_lessons"`
	CurrentLessonID  string            `json:"current_lesson_id,omitempty"`
	CompletedAt      map[string]string `json:"completed_at"`
	CreatedAt        string            `json:"created_at"`
	UpdatedAt        string            `json:"updated_at"`
}

func toStored(p *domain.Progress, codec domain.TimeCodec) StoredProgress {
	ids := p.CompletedIDs()
	completedAt := make(map[string]string, len(ids))
	for _, id := range ids {
		completedAt[id] = codec.Format(p.Completed[id])
	}
	return StoredProgress{
		LearnerID:        p.LearnerID,
		CompletedLessons: ids,
		CurrentLessonID:  p.CurrentLessonID,
		CompletedAt:      completedAt,
		CreatedAt:        codec.Format(p.CreatedAt),
		UpdatedAt:        codec.Format(p.UpdatedAt),
	}
}

func fromStored(s StoredProgress, codec domain.TimeCodec) (*domain.Progress, error) {
	createdAt, err := codec.Parse(s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	updatedAt, err := codec.Parse(s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}

	p := &domain.Progress{
		LearnerID:       s.LearnerID,
		Completed:       make(map[string]time.Time, len(s.CompletedLessons)),
		CurrentLessonID: s.CurrentLessonID,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}

	for _, id := range s.CompletedLessons {
		if id == "" {
			continue
		}
		at, err := codec.Parse(s.CompletedAt[id])
		if err != nil {
			return nil, fmt.Errorf("completed_at %s: %w", id, err)
		}
		p.Completed[id] = at
	}

	return p, nil
}
