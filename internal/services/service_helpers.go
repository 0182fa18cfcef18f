package services

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/SAP-F-2025/examination-service/internal/events"
	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
	"github.com/SAP-F-2025/examination-service/internal/validator"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// IsValidationError reports whether err is a request validation failure
func IsValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.Is(err, ErrValidationFailed) || errors.As(err, &verrs)
}

func requirePrivileged(requester Requester, resource, action string) error {
	if requester.IsPrivileged() {
		return nil
	}
	return NewPermissionError(requester.UserID, resource, action, "teacher or admin role required")
}

// requireOwnerOrAdmin lets admins through and teachers only for their own records
func requireOwnerOrAdmin(requester Requester, ownerID, resource, action string) error {
	if err := requirePrivileged(requester, resource, action); err != nil {
		return err
	}
	if requester.Role == models.RoleAdmin || requester.UserID == ownerID {
		return nil
	}
	return NewPermissionError(requester.UserID, resource, action, "only the author or an admin can do this")
}

// lookupError maps a repository read failure to notFound or an InternalError
func lookupError(op string, err error, notFound error) error {
	if repositories.IsNotFound(err) {
		return notFound
	}
	return NewInternalError(op, err)
}

// publishEvent is best effort; a failed publish never fails the request
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType string, data any) {
	if publisher == nil {
		return
	}
	event := events.NewEvent(eventType, data)
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "type", eventType, "event_id", event.ID, "error", err)
	}
}

func normalizePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func pageOf(limit, offset int) int {
	return offset/limit + 1
}

// loadExams fetches the exams referenced by submissions; deleted exams are absent
func loadExams(ctx context.Context, repo repositories.Repository, submissions []*models.Submission) (map[uint]*models.Exam, error) {
	ids := make([]uint, 0, len(submissions))
	for _, sub := range submissions {
		ids = append(ids, sub.ExamID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	exams := make(map[uint]*models.Exam, len(ids))
	if len(ids) == 0 {
		return exams, nil
	}

	found, err := repo.Exam().GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	for _, exam := range found {
		exams[exam.ID] = exam
	}
	return exams, nil
}

// loadStudents resolves submission owners through the identity provider
func loadStudents(ctx context.Context, repo repositories.Repository, submissions []*models.Submission) (map[string]*models.User, error) {
	ids := make([]string, 0, len(submissions))
	for _, sub := range submissions {
		ids = append(ids, sub.StudentID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	found, err := repo.User().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, user := range found {
		users[user.ID] = user
	}
	return users, nil
}

// studentDisplay falls back to the raw id when the user cannot be resolved
func studentDisplay(users map[string]*models.User, studentID string) (name, email string, rollNo *string) {
	if user, ok := users[studentID]; ok {
		return user.FullName, user.Email, user.RollNo
	}
	return studentID, "", nil
}

func percentage(marks float64, totalMarks int) float64 {
	if totalMarks <= 0 {
		return 0
	}
	return marks / float64(totalMarks) * 100
}
