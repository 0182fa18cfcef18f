package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ServiceName  = "examination-service"
	EventVersion = "1.0"
)

// Event types
const (
	ExamComposed      = "exam.composed"
	ExamDeleted       = "exam.deleted"
	SubmissionCreated = "submission.created"
	SubmissionGraded  = "submission.graded"
)

// Event is the envelope published for every domain change
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

func NewEvent(eventType string, data any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    ServiceName,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

type ExamComposedData struct {
	ExamID        uint   `json:"exam_id"`
	Title         string `json:"title"`
	CreatedBy     string `json:"created_by"`
	SelectionMode string `json:"selection_mode"`
	TotalMarks    int    `json:"total_marks"`
}

type ExamDeletedData struct {
	ExamID    uint   `json:"exam_id"`
	DeletedBy string `json:"deleted_by"`
}

type SubmissionCreatedData struct {
	SubmissionID uint    `json:"submission_id"`
	ExamID       uint    `json:"exam_id"`
	StudentID    string  `json:"student_id"`
	Marks        float64 `json:"marks"`
	Status       string  `json:"status"`
}

type SubmissionGradedData struct {
	SubmissionID uint    `json:"submission_id"`
	ExamID       uint    `json:"exam_id"`
	StudentID    string  `json:"student_id"`
	Marks        float64 `json:"marks"`
	GradedBy     string  `json:"graded_by"`
}
