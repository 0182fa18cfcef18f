package services

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
)

const (
	rankingSize  = 5
	defaultTopic = "General"
)

type analyticsService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAnalyticsService(repo repositories.Repository, logger *slog.Logger) AnalyticsService {
	return &analyticsService{repo: repo, logger: logger}
}

func (s *analyticsService) GetStats(ctx context.Context, requester Requester) (*Stats, error) {
	if err := requirePrivileged(requester, "analytics", "view"); err != nil {
		return nil, err
	}

	submissions, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionFilters{})
	if err != nil {
		return nil, NewInternalError("failed to list submissions", err)
	}

	exams, err := loadExams(ctx, s.repo, submissions)
	if err != nil {
		return nil, NewInternalError("failed to load exams", err)
	}
	users, err := loadStudents(ctx, s.repo, submissions)
	if err != nil {
		return nil, NewInternalError("failed to load students", err)
	}
	totalExams, err := s.repo.Exam().Count(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to count exams", err)
	}

	stats := ComputeStats(submissions, exams, users)
	stats.TotalExams = totalExams

	s.logger.Debug("Computed stats",
		"submissions", stats.TotalSubmissions,
		"orphaned", stats.OrphanedSubmissions,
		"avg_score", stats.AvgScore)

	return stats, nil
}

type scoreAccumulator struct {
	sum   float64
	count int
}

func (a scoreAccumulator) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// ComputeStats folds submissions into score statistics. Submissions whose exam
// is missing from exams are counted as orphaned and otherwise ignored, as are
// submissions for exams with no marks. Rankings break ties by student id and
// topic name so the output is deterministic.
func ComputeStats(submissions []*models.Submission, exams map[uint]*models.Exam, users map[string]*models.User) *Stats {
	students := make(map[string]*scoreAccumulator)
	topics := make(map[string]*scoreAccumulator)
	var overall scoreAccumulator
	orphaned := 0

	for _, sub := range submissions {
		exam, ok := exams[sub.ExamID]
		if !ok {
			orphaned++
			continue
		}
		if exam.TotalMarks <= 0 {
			continue
		}

		pct := percentage(sub.Marks, exam.TotalMarks)
		overall.sum += pct
		overall.count++

		student, ok := students[sub.StudentID]
		if !ok {
			student = &scoreAccumulator{}
			students[sub.StudentID] = student
		}
		student.sum += pct
		student.count++

		topic := exam.Category
		if topic == "" {
			topic = defaultTopic
		}
		acc, ok := topics[topic]
		if !ok {
			acc = &scoreAccumulator{}
			topics[topic] = acc
		}
		acc.sum += pct
		acc.count++
	}

	toppers := make([]*StudentScore, 0, len(students))
	for id, acc := range students {
		name, email, _ := studentDisplay(users, id)
		toppers = append(toppers, &StudentScore{
			StudentID: id,
			Name:      name,
			Email:     email,
			AvgScore:  acc.mean(),
			Exams:     acc.count,
		})
	}
	slices.SortFunc(toppers, func(a, b *StudentScore) int {
		if c := cmp.Compare(b.AvgScore, a.AvgScore); c != 0 {
			return c
		}
		return cmp.Compare(a.StudentID, b.StudentID)
	})

	weakAreas := make([]*TopicScore, 0, len(topics))
	for topic, acc := range topics {
		weakAreas = append(weakAreas, &TopicScore{
			Topic:    topic,
			AvgScore: acc.mean(),
			Attempts: acc.count,
		})
	}
	slices.SortFunc(weakAreas, func(a, b *TopicScore) int {
		if c := cmp.Compare(a.AvgScore, b.AvgScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Topic, b.Topic)
	})

	toppers = toppers[:min(rankingSize, len(toppers))]
	weakAreas = weakAreas[:min(rankingSize, len(weakAreas))]
	for _, t := range toppers {
		t.AvgScore = round1(t.AvgScore)
	}
	for _, w := range weakAreas {
		w.AvgScore = round1(w.AvgScore)
	}

	return &Stats{
		AvgScore:            round1(overall.mean()),
		Toppers:             toppers,
		WeakAreas:           weakAreas,
		TotalStudents:       len(students),
		TotalSubmissions:    len(submissions),
		OrphanedSubmissions: orphaned,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
