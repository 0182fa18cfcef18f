package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
	"github.com/SAP-F-2025/examination-service/internal/validator"
)

// Requester is the authenticated caller as resolved by the identity provider
type Requester struct {
	UserID string
	Role   models.UserRole
}

func (r Requester) IsPrivileged() bool {
	return r.Role.IsPrivileged()
}

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type ComposeExamRequest = validator.ExamComposeRequest
type UpdateExamRequest = validator.ExamUpdateRequest
type SubmitRequest = validator.SubmissionCreateRequest
type SubmittedAnswerRequest = validator.SubmittedAnswerRequest
type GradeRequest = validator.GradeRequest

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

type ExamListResponse struct {
	Exams []*models.Exam `json:"exams"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// PendingSubmission is a pending submission joined with display fields.
// Orphaned is set when the exam no longer exists.
type PendingSubmission struct {
	*models.Submission
	ExamTitle    string  `json:"exam_title"`
	StudentName  string  `json:"student_name"`
	StudentEmail string  `json:"student_email"`
	RollNo       *string `json:"roll_no,omitempty"`
	Orphaned     bool    `json:"orphaned"`
}

// ExamResult is one row of an exam's result table
type ExamResult struct {
	*models.Submission
	StudentName  string  `json:"student_name"`
	StudentEmail string  `json:"student_email"`
	RollNo       *string `json:"roll_no,omitempty"`
	Percentage   float64 `json:"percentage"`
}

type ExamResultsResponse struct {
	ExamID     uint          `json:"exam_id"`
	ExamTitle  string        `json:"exam_title"`
	TotalMarks int           `json:"total_marks"`
	PassMarks  int           `json:"pass_marks"`
	Results    []*ExamResult `json:"results"`
}

// StudentResult is a student's own submission with exam display fields
type StudentResult struct {
	*models.Submission
	ExamTitle  string     `json:"exam_title"`
	ExamDate   *time.Time `json:"exam_date,omitempty"`
	Duration   int        `json:"duration_minutes"`
	TotalMarks int        `json:"total_marks"`
	Orphaned   bool       `json:"orphaned"`
}

// SubmissionReview is a submission together with the exam it answers
type SubmissionReview struct {
	Submission *models.Submission `json:"submission"`
	Exam       *models.Exam       `json:"exam,omitempty"`
	Orphaned   bool               `json:"orphaned"`
}

type StudentScore struct {
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	AvgScore  float64 `json:"avg_score"`
	Exams     int     `json:"exams"`
}

type TopicScore struct {
	Topic    string  `json:"topic"`
	AvgScore float64 `json:"avg_score"`
	Attempts int     `json:"attempts"`
}

type Stats struct {
	AvgScore            float64         `json:"avg_score"`
	Toppers             []*StudentScore `json:"toppers"`
	WeakAreas           []*TopicScore   `json:"weak_areas"`
	TotalExams          int64           `json:"total_exams"`
	TotalStudents       int             `json:"total_students"`
	TotalSubmissions    int             `json:"total_submissions"`
	OrphanedSubmissions int             `json:"orphaned_submissions"`
}

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ExportFile is a rendered results export
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ===== SERVICE INTERFACES =====

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, requester Requester) (*models.Question, error)
	GetByID(ctx context.Context, id uint, requester Requester) (*models.Question, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, requester Requester) (*models.Question, error)
	Delete(ctx context.Context, id uint, requester Requester) error
	List(ctx context.Context, filters repositories.QuestionFilters, requester Requester) (*QuestionListResponse, error)
}

type ExamService interface {
	// Compose snapshots the selected questions into a new exam
	Compose(ctx context.Context, req *ComposeExamRequest, requester Requester) (*models.Exam, error)
	// View returns the exam filtered for the requester's role
	View(ctx context.Context, id uint, requester Requester) (*models.Exam, error)
	List(ctx context.Context, filters repositories.ExamFilters, requester Requester) (*ExamListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateExamRequest, requester Requester) (*models.Exam, error)
	Delete(ctx context.Context, id uint, requester Requester) error
}

type SubmissionService interface {
	Submit(ctx context.Context, examID uint, req *SubmitRequest, requester Requester) (*models.Submission, error)
	Review(ctx context.Context, id uint, requester Requester) (*SubmissionReview, error)
	ListMine(ctx context.Context, requester Requester) ([]*StudentResult, error)
	ListByExam(ctx context.Context, examID uint, requester Requester) (*ExamResultsResponse, error)
}

type GradingService interface {
	ListPending(ctx context.Context, requester Requester) ([]*PendingSubmission, error)
	Grade(ctx context.Context, submissionID uint, req *GradeRequest, requester Requester) (*models.Submission, error)
}

type AnalyticsService interface {
	GetStats(ctx context.Context, requester Requester) (*Stats, error)
}

type ExportService interface {
	ExportResults(ctx context.Context, examID uint, format ExportFormat, requester Requester) (*ExportFile, error)
}

type ServiceManager interface {
	Question() QuestionService
	Exam() ExamService
	Submission() SubmissionService
	Grading() GradingService
	Analytics() AnalyticsService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
