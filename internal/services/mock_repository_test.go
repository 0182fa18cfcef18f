package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
)

// MockRepository is an in-memory repositories.Repository for service tests.
// Submissions honor the (exam, student) uniqueness rule under a mutex.
type MockRepository struct {
	mu sync.Mutex

	questions   map[uint]*models.Question
	exams       map[uint]*models.Exam
	submissions map[uint]*models.Submission
	users       map[string]*models.User

	nextQuestionID   uint
	nextExamID       uint
	nextSubmissionID uint

	createExamErr error
	listErr       error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		questions:   make(map[uint]*models.Question),
		exams:       make(map[uint]*models.Exam),
		submissions: make(map[uint]*models.Submission),
		users:       make(map[string]*models.User),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (m *MockRepository) Question() repositories.QuestionRepository     { return &mockQuestionRepo{m} }
func (m *MockRepository) Exam() repositories.ExamRepository             { return &mockExamRepo{m} }
func (m *MockRepository) Submission() repositories.SubmissionRepository { return &mockSubmissionRepo{m} }
func (m *MockRepository) User() repositories.UserRepository             { return &mockUserRepo{m} }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

// ===== SEED HELPERS =====

func (m *MockRepository) addQuestion(q *models.Question) *models.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextQuestionID++
	q.ID = m.nextQuestionID
	m.questions[q.ID] = q
	return q
}

func (m *MockRepository) addExam(e *models.Exam) *models.Exam {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextExamID++
	e.ID = m.nextExamID
	m.exams[e.ID] = e.Clone()
	return e
}

func (m *MockRepository) addUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *MockRepository) examCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.exams)
}

func (m *MockRepository) submissionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.submissions)
}

func (m *MockRepository) deleteExam(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.exams, id)
}

// ===== QUESTIONS =====

type mockQuestionRepo struct{ m *MockRepository }

func (r *mockQuestionRepo) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	r.m.addQuestion(q)
	return nil
}

func (r *mockQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	q, ok := r.m.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %d: %w", id, repositories.ErrNotFound)
	}
	cp := *q
	return &cp, nil
}

func (r *mockQuestionRepo) Update(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.questions[q.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *q
	r.m.questions[q.ID] = &cp
	return nil
}

func (r *mockQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.questions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.questions, id)
	return nil
}

func (r *mockQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Question
	for _, id := range ids {
		if q, ok := r.m.questions[id]; ok {
			out = append(out, q)
		}
	}
	// the store makes no ordering promise
	slices.Reverse(out)
	return out, nil
}

func (r *mockQuestionRepo) Find(ctx context.Context, tx *gorm.DB, filter repositories.QuestionPoolFilter) ([]*models.Question, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Question
	for _, q := range r.m.questions {
		if filter.Topic != "" && !strings.Contains(strings.ToLower(q.Topic), strings.ToLower(filter.Topic)) {
			continue
		}
		if filter.Difficulty != "" && q.Difficulty != filter.Difficulty {
			continue
		}
		out = append(out, q)
	}
	slices.SortFunc(out, func(a, b *models.Question) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (r *mockQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Question
	for _, q := range r.m.questions {
		if filters.Kind != nil && q.Kind != *filters.Kind {
			continue
		}
		out = append(out, q)
	}
	slices.SortFunc(out, func(a, b *models.Question) int { return int(a.ID) - int(b.ID) })
	return out, int64(len(out)), nil
}

// ===== EXAMS =====

type mockExamRepo struct{ m *MockRepository }

func (r *mockExamRepo) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	if r.m.createExamErr != nil {
		return r.m.createExamErr
	}
	r.m.addExam(exam)
	return nil
}

func (r *mockExamRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	exam, ok := r.m.exams[id]
	if !ok {
		return nil, fmt.Errorf("exam %d: %w", id, repositories.ErrNotFound)
	}
	return exam.Clone(), nil
}

func (r *mockExamRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Exam, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Exam
	for _, id := range ids {
		if exam, ok := r.m.exams[id]; ok {
			out = append(out, exam.Clone())
		}
	}
	return out, nil
}

func (r *mockExamRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Exam
	for _, exam := range r.m.exams {
		if filters.IsPublished != nil && exam.IsPublished != *filters.IsPublished {
			continue
		}
		out = append(out, exam.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Exam) int { return int(a.ID) - int(b.ID) })
	return out, int64(len(out)), nil
}

func (r *mockExamRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(r.m.examCount()), nil
}

func (r *mockExamRepo) UpdateMetadata(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.exams[exam.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Title = exam.Title
	stored.Date = exam.Date
	stored.Duration = exam.Duration
	stored.Category = exam.Category
	stored.PassMarks = exam.PassMarks
	stored.RandomizeQuestions = exam.RandomizeQuestions
	stored.IsPublished = exam.IsPublished
	return nil
}

func (r *mockExamRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.exams[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.exams, id)
	return nil
}

// ===== SUBMISSIONS =====

type mockSubmissionRepo struct{ m *MockRepository }

func (r *mockSubmissionRepo) Create(ctx context.Context, tx *gorm.DB, sub *models.Submission) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.submissions {
		if existing.ExamID == sub.ExamID && existing.StudentID == sub.StudentID {
			return fmt.Errorf("failed to create submission: %w", repositories.ErrDuplicateKey)
		}
	}
	r.m.nextSubmissionID++
	sub.ID = r.m.nextSubmissionID
	cp := *sub
	r.m.submissions[sub.ID] = &cp
	return nil
}

func (r *mockSubmissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sub, ok := r.m.submissions[id]
	if !ok {
		return nil, fmt.Errorf("submission %d: %w", id, repositories.ErrNotFound)
	}
	cp := *sub
	return &cp, nil
}

func (r *mockSubmissionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, error) {
	if r.m.listErr != nil {
		return nil, r.m.listErr
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Submission
	for _, sub := range r.m.submissions {
		if filters.ExamID != nil && sub.ExamID != *filters.ExamID {
			continue
		}
		if filters.StudentID != nil && sub.StudentID != *filters.StudentID {
			continue
		}
		if filters.Status != nil && sub.Status != *filters.Status {
			continue
		}
		cp := *sub
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *models.Submission) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (r *mockSubmissionRepo) UpdateGrade(ctx context.Context, tx *gorm.DB, id uint, update repositories.GradeUpdate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sub, ok := r.m.submissions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	gradedBy := update.GradedBy
	gradedAt := update.GradedAt
	sub.Marks = update.Marks
	sub.Status = models.GradingComplete
	sub.GradedBy = &gradedBy
	sub.GradedAt = &gradedAt
	return nil
}

// ===== USERS =====

type mockUserRepo struct{ m *MockRepository }

func (r *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (r *mockUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
