package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SAP-F-2025/examination-service/internal/events"
	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
	"github.com/SAP-F-2025/examination-service/internal/validator"
)

var (
	teacher = Requester{UserID: "teacher-1", Role: models.RoleTeacher}
	admin   = Requester{UserID: "admin-1", Role: models.RoleAdmin}
	student = Requester{UserID: "student-1", Role: models.RoleStudent}
)

func examDate() *time.Time {
	d := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return &d
}

func seedQuestion(repo *MockRepository, topic string, difficulty models.DifficultyLevel) *models.Question {
	explanation := "because"
	return repo.addQuestion(&models.Question{
		Kind:          models.MultipleChoice,
		Text:          fmt.Sprintf("%s question", topic),
		Options:       []string{"a", "b", "c"},
		CorrectAnswer: []byte(`0`),
		Topic:         topic,
		Difficulty:    difficulty,
		Explanation:   &explanation,
		CreatedBy:     teacher.UserID,
	})
}

func newTestExamService(repo *MockRepository, seed uint64) (ExamService, *events.MockEventPublisher) {
	publisher := events.NewMockEventPublisher(testLogger())
	return NewExamService(repo, testLogger(), validator.New(), publisher, NewSeededRandomSource(seed)), publisher
}

func TestExamService_ComposeAuto(t *testing.T) {
	repo := NewMockRepository()
	for i := 0; i < 6; i++ {
		seedQuestion(repo, "Algebra", models.DifficultyEasy)
	}
	seedQuestion(repo, "Algebra", models.DifficultyHard)
	seedQuestion(repo, "Geometry", models.DifficultyEasy)

	svc, publisher := newTestExamService(repo, 42)

	for seed := 0; seed < 10; seed++ {
		exam, err := svc.Compose(context.Background(), &ComposeExamRequest{
			Title:         "Algebra quiz",
			Date:          examDate(),
			Duration:      30,
			SelectionMode: models.SelectionAuto,
			Filters:       validator.QuestionPoolFilterRequest{Topic: "alg", Difficulty: models.DifficultyEasy},
			Count:         4,
		}, teacher)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}

		if len(exam.Questions) != 4 || exam.TotalMarks != 4 {
			t.Fatalf("got %d questions, total %d; want 4", len(exam.Questions), exam.TotalMarks)
		}
		seenSource := map[uint]bool{}
		seenID := map[string]bool{}
		for _, q := range exam.Questions {
			if q.Topic != "Algebra" || q.Difficulty != models.DifficultyEasy {
				t.Errorf("question %d does not match filters: %s/%s", q.SourceQuestionID, q.Topic, q.Difficulty)
			}
			if seenSource[q.SourceQuestionID] || seenID[q.ID] {
				t.Errorf("duplicate question %d", q.SourceQuestionID)
			}
			seenSource[q.SourceQuestionID] = true
			seenID[q.ID] = true
		}
		if !exam.RandomizeQuestions || !exam.IsPublished {
			t.Errorf("auto defaults: randomize=%v published=%v", exam.RandomizeQuestions, exam.IsPublished)
		}
		if exam.CreatedBy != teacher.UserID {
			t.Errorf("CreatedBy = %s", exam.CreatedBy)
		}
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 10 || published[0].Type != events.ExamComposed {
		t.Errorf("published %d events", len(published))
	}
}

func TestExamService_ComposeAutoInsufficientPool(t *testing.T) {
	repo := NewMockRepository()
	seedQuestion(repo, "Physics", models.DifficultyHard)
	seedQuestion(repo, "Physics", models.DifficultyHard)
	svc, publisher := newTestExamService(repo, 1)

	_, err := svc.Compose(context.Background(), &ComposeExamRequest{
		Title:         "Physics",
		Date:          examDate(),
		Duration:      30,
		SelectionMode: models.SelectionAuto,
		Filters:       validator.QuestionPoolFilterRequest{Topic: "physics"},
		Count:         3,
	}, teacher)

	var poolErr *InsufficientPoolError
	if !errors.As(err, &poolErr) {
		t.Fatalf("error = %v, want InsufficientPoolError", err)
	}
	if poolErr.Available != 2 || poolErr.Requested != 3 {
		t.Errorf("got %+v", poolErr)
	}
	if err.Error() != "not enough questions found: found 2, requested 3" {
		t.Errorf("message = %q", err.Error())
	}
	if repo.examCount() != 0 {
		t.Error("no exam should be persisted")
	}
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("no event should be published")
	}
}

func TestExamService_ComposeManual(t *testing.T) {
	repo := NewMockRepository()
	q1 := seedQuestion(repo, "A", models.DifficultyEasy)
	q2 := seedQuestion(repo, "B", models.DifficultyEasy)
	q3 := seedQuestion(repo, "C", models.DifficultyEasy)
	svc, _ := newTestExamService(repo, 1)

	tests := []struct {
		name      string
		ids       []uint
		wantOrder []uint
		wantErr   bool
	}{
		{name: "keeps caller order", ids: []uint{q3.ID, q1.ID, q2.ID}, wantOrder: []uint{q3.ID, q1.ID, q2.ID}},
		{name: "collapses duplicates", ids: []uint{q2.ID, q1.ID, q2.ID}, wantOrder: []uint{q2.ID, q1.ID}},
		{name: "missing id", ids: []uint{q1.ID, 999}, wantErr: true},
		{name: "empty ids", ids: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exam, err := svc.Compose(context.Background(), &ComposeExamRequest{
				Title:         "Manual",
				Date:          examDate(),
				Duration:      45,
				SelectionMode: models.SelectionManual,
				QuestionIDs:   tt.ids,
			}, teacher)
			if tt.wantErr {
				if !IsValidationError(err) {
					t.Fatalf("error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compose() error = %v", err)
			}
			if len(exam.Questions) != len(tt.wantOrder) {
				t.Fatalf("got %d questions", len(exam.Questions))
			}
			for i, q := range exam.Questions {
				if q.SourceQuestionID != tt.wantOrder[i] {
					t.Errorf("position %d = %d, want %d", i, q.SourceQuestionID, tt.wantOrder[i])
				}
			}
			if exam.RandomizeQuestions {
				t.Error("manual exams are not randomized by default")
			}
		})
	}

	_, err := svc.Compose(context.Background(), &ComposeExamRequest{
		Title: "Manual", Date: examDate(), Duration: 45,
		SelectionMode: models.SelectionManual, QuestionIDs: []uint{q1.ID, 999, 998},
	}, teacher)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "questions not found: 999, 998" {
		t.Errorf("error = %v", err)
	}
}

func TestExamService_ComposeSnapshotsQuestions(t *testing.T) {
	repo := NewMockRepository()
	q := seedQuestion(repo, "A", models.DifficultyEasy)
	svc, _ := newTestExamService(repo, 1)

	exam, err := svc.Compose(context.Background(), &ComposeExamRequest{
		Title: "Snapshot", Date: examDate(), Duration: 10,
		SelectionMode: models.SelectionManual, QuestionIDs: []uint{q.ID},
	}, teacher)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	q.Text = "edited"
	q.Options[0] = "changed"
	_ = repo.Question().Delete(context.Background(), nil, q.ID)

	stored, err := repo.Exam().GetByID(context.Background(), nil, exam.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Questions[0].Text != "A question" || stored.Questions[0].Options[0] != "a" {
		t.Errorf("embedded question changed: %+v", stored.Questions[0])
	}
	if stored.Questions[0].ID == "" || stored.Questions[0].SourceQuestionID != q.ID {
		t.Errorf("embedded ids = %q / %d", stored.Questions[0].ID, stored.Questions[0].SourceQuestionID)
	}
}

func TestExamService_ComposeRejects(t *testing.T) {
	repo := NewMockRepository()
	q := seedQuestion(repo, "A", models.DifficultyEasy)
	svc, _ := newTestExamService(repo, 1)

	_, err := svc.Compose(context.Background(), &ComposeExamRequest{
		Title: "x", Date: examDate(), Duration: 10,
		SelectionMode: models.SelectionManual, QuestionIDs: []uint{q.ID},
	}, student)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("student compose error = %v", err)
	}

	_, err = svc.Compose(context.Background(), &ComposeExamRequest{
		Title: "x", Date: examDate(), Duration: 10, PassMarks: 2,
		SelectionMode: models.SelectionManual, QuestionIDs: []uint{q.ID},
	}, teacher)
	if !IsValidationError(err) {
		t.Errorf("pass marks above total error = %v", err)
	}

	repo.createExamErr = errors.New("connection reset")
	_, err = svc.Compose(context.Background(), &ComposeExamRequest{
		Title: "x", Date: examDate(), Duration: 10,
		SelectionMode: models.SelectionManual, QuestionIDs: []uint{q.ID},
	}, teacher)
	var internal *InternalError
	if !errors.As(err, &internal) {
		t.Errorf("store failure error = %v, want InternalError", err)
	}
}

func buildExam(n int, randomize bool) *models.Exam {
	exam := &models.Exam{ID: 1, Title: "View", TotalMarks: n, RandomizeQuestions: randomize, IsPublished: true}
	for i := 0; i < n; i++ {
		explanation := "why"
		exam.Questions = append(exam.Questions, models.EmbeddedQuestion{
			ID:            fmt.Sprintf("q%d", i),
			Kind:          models.MultipleChoice,
			Options:       []string{"a", "b"},
			CorrectAnswer: json.RawMessage(`1`),
			Explanation:   &explanation,
		})
	}
	return exam
}

func TestViewExam(t *testing.T) {
	rnd := NewSeededRandomSource(7)

	t.Run("privileged sees stored exam", func(t *testing.T) {
		exam := buildExam(3, true)
		for _, role := range []models.UserRole{models.RoleTeacher, models.RoleAdmin} {
			got := ViewExam(exam, role, rnd)
			if got != exam {
				t.Errorf("%s should receive the stored exam", role)
			}
		}
	})

	t.Run("student never sees answers", func(t *testing.T) {
		exam := buildExam(8, true)
		for i := 0; i < 20; i++ {
			got := ViewExam(exam, models.RoleStudent, rnd)
			payload, err := json.Marshal(got)
			if err != nil {
				t.Fatal(err)
			}
			var decoded struct {
				Questions []map[string]any `json:"questions"`
			}
			if err := json.Unmarshal(payload, &decoded); err != nil {
				t.Fatal(err)
			}
			for _, q := range decoded.Questions {
				if _, ok := q["correct_answer"]; ok {
					t.Fatalf("correct_answer leaked: %v", q)
				}
				if _, ok := q["explanation"]; ok {
					t.Fatalf("explanation leaked: %v", q)
				}
			}
			if len(decoded.Questions) != 8 {
				t.Fatalf("got %d questions", len(decoded.Questions))
			}
		}
	})

	t.Run("shuffle keeps the set and leaves input alone", func(t *testing.T) {
		exam := buildExam(10, true)
		changed := false
		for i := 0; i < 20; i++ {
			got := ViewExam(exam, models.RoleStudent, rnd)
			ids := map[string]bool{}
			for j, q := range got.Questions {
				ids[q.ID] = true
				if q.ID != exam.Questions[j].ID {
					changed = true
				}
			}
			if len(ids) != 10 {
				t.Fatalf("question set changed: %v", ids)
			}
		}
		if !changed {
			t.Error("expected at least one reordered view")
		}
		for i, q := range exam.Questions {
			if q.ID != fmt.Sprintf("q%d", i) || q.CorrectAnswer == nil || q.Explanation == nil {
				t.Fatalf("input exam mutated at %d: %+v", i, q)
			}
		}
	})

	t.Run("order kept when randomization is off", func(t *testing.T) {
		exam := buildExam(5, false)
		got := ViewExam(exam, models.RoleStudent, rnd)
		for i, q := range got.Questions {
			if q.ID != exam.Questions[i].ID {
				t.Errorf("position %d = %s", i, q.ID)
			}
		}
	})
}

func TestExamService_View(t *testing.T) {
	repo := NewMockRepository()
	exam := repo.addExam(buildExam(2, false))
	hidden := buildExam(1, false)
	hidden.IsPublished = false
	hidden = repo.addExam(hidden)
	svc, _ := newTestExamService(repo, 1)
	ctx := context.Background()

	got, err := svc.View(ctx, exam.ID, student)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if got.Questions[0].CorrectAnswer != nil {
		t.Error("student view must not include answers")
	}

	got, err = svc.View(ctx, exam.ID, teacher)
	if err != nil || got.Questions[0].CorrectAnswer == nil {
		t.Errorf("teacher view = %+v, %v", got, err)
	}

	if _, err := svc.View(ctx, 404, teacher); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown exam error = %v", err)
	}
	if _, err := svc.View(ctx, hidden.ID, student); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("unpublished exam error = %v", err)
	}
}

func TestExamService_ListUpdateDelete(t *testing.T) {
	repo := NewMockRepository()
	published := buildExam(2, false)
	published.CreatedBy = teacher.UserID
	published = repo.addExam(published)
	draft := buildExam(1, false)
	draft.IsPublished = false
	draft.CreatedBy = teacher.UserID
	repo.addExam(draft)
	svc, publisher := newTestExamService(repo, 1)
	ctx := context.Background()

	list, err := svc.List(ctx, repositories.ExamFilters{}, student)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list.Total != 1 || list.Exams[0].Questions[0].CorrectAnswer != nil {
		t.Errorf("student list = %+v", list)
	}
	list, _ = svc.List(ctx, repositories.ExamFilters{}, teacher)
	if list.Total != 2 || list.Size != defaultPageSize || list.Page != 1 {
		t.Errorf("teacher list total=%d size=%d page=%d", list.Total, list.Size, list.Page)
	}

	title := "Renamed"
	pass := 1
	updated, err := svc.Update(ctx, published.ID, &UpdateExamRequest{Title: &title, PassMarks: &pass}, teacher)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Renamed" || updated.PassMarks != 1 || len(updated.Questions) != 2 {
		t.Errorf("updated = %+v", updated)
	}

	tooMany := 3
	if _, err := svc.Update(ctx, published.ID, &UpdateExamRequest{PassMarks: &tooMany}, teacher); !IsValidationError(err) {
		t.Errorf("pass marks error = %v", err)
	}

	other := Requester{UserID: "teacher-2", Role: models.RoleTeacher}
	if err := svc.Delete(ctx, published.ID, other); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("non-author delete error = %v", err)
	}
	if err := svc.Delete(ctx, published.ID, admin); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.View(ctx, published.ID, admin); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("deleted exam view error = %v", err)
	}
	evts := publisher.GetPublishedEvents()
	if len(evts) != 1 || evts[0].Type != events.ExamDeleted {
		t.Errorf("events = %v", evts)
	}
}
