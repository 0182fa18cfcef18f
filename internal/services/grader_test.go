package services

import (
	"encoding/json"
	"testing"

	"github.com/SAP-F-2025/examination-service/internal/models"
)

func TestScoreAnswer(t *testing.T) {
	mc := func(correct string) models.EmbeddedQuestion {
		return models.EmbeddedQuestion{ID: "q", Kind: models.MultipleChoice, Options: []string{"a", "b"}, CorrectAnswer: json.RawMessage(correct)}
	}
	boolean := func(correct string) models.EmbeddedQuestion {
		return models.EmbeddedQuestion{ID: "q", Kind: models.Boolean, Options: []string{"True", "False"}, CorrectAnswer: json.RawMessage(correct)}
	}

	tests := []struct {
		name        string
		question    models.EmbeddedQuestion
		answer      string
		wantMarks   float64
		wantPending bool
	}{
		{name: "index match", question: mc(`0`), answer: `0`, wantMarks: 1},
		{name: "index mismatch", question: mc(`0`), answer: `1`},
		{name: "string answer against numeric key", question: mc(`0`), answer: `"0"`, wantMarks: 1},
		{name: "numeric answer against string key", question: mc(`"1"`), answer: `1`, wantMarks: 1},
		{name: "float form of index", question: mc(`1`), answer: `1.0`, wantMarks: 1},
		{name: "negative zero matches zero", question: mc(`0`), answer: `-0`, wantMarks: 1},
		{name: "exponent form of zero", question: mc(`0`), answer: `0e0`, wantMarks: 1},
		{name: "literal match", question: mc(`"b"`), answer: `"b"`, wantMarks: 1},
		{name: "literal is case sensitive", question: mc(`"b"`), answer: `"B"`},
		{name: "boolean literal", question: boolean(`true`), answer: `"true"`, wantMarks: 1},
		{name: "boolean option text", question: boolean(`"True"`), answer: `"True"`, wantMarks: 1},
		{name: "null answer", question: mc(`0`), answer: `null`},
		{name: "missing answer", question: mc(`0`), answer: ``},
		{name: "question without key", question: mc(``), answer: `0`},
		{name: "array compared compactly", question: mc(`[0, 1]`), answer: `[0,1]`, wantMarks: 1},
		{
			name:        "free text is pending",
			question:    models.EmbeddedQuestion{ID: "q", Kind: models.FreeText},
			answer:      `"an essay"`,
			wantPending: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var answer json.RawMessage
			if tt.answer != "" {
				answer = json.RawMessage(tt.answer)
			}
			marks, pending := ScoreAnswer(tt.question, answer)
			if marks != tt.wantMarks || pending != tt.wantPending {
				t.Errorf("ScoreAnswer() = (%v, %v), want (%v, %v)", marks, pending, tt.wantMarks, tt.wantPending)
			}

			again, _ := ScoreAnswer(tt.question, answer)
			if again != marks {
				t.Errorf("second grading = %v, first = %v", again, marks)
			}
		})
	}
}

func TestGradeAnswers(t *testing.T) {
	exam := &models.Exam{
		TotalMarks: 3,
		Questions: []models.EmbeddedQuestion{
			{ID: "mc1", Kind: models.MultipleChoice, Options: []string{"a", "b"}, CorrectAnswer: json.RawMessage(`0`)},
			{ID: "mc2", Kind: models.MultipleChoice, Options: []string{"a", "b"}, CorrectAnswer: json.RawMessage(`1`)},
			{ID: "essay", Kind: models.FreeText},
		},
	}

	tests := []struct {
		name       string
		answers    []models.SubmittedAnswer
		wantMarks  float64
		wantStatus models.GradingStatus
	}{
		{
			name:       "all objective correct",
			answers:    []models.SubmittedAnswer{{QuestionID: "mc1", Answer: json.RawMessage(`0`)}, {QuestionID: "mc2", Answer: json.RawMessage(`"1"`)}},
			wantMarks:  2,
			wantStatus: models.GradingComplete,
		},
		{
			name:       "free text answered",
			answers:    []models.SubmittedAnswer{{QuestionID: "mc1", Answer: json.RawMessage(`0`)}, {QuestionID: "essay", Answer: json.RawMessage(`"text"`)}},
			wantMarks:  1,
			wantStatus: models.GradingPendingManualReview,
		},
		{
			name:       "stale ids ignored",
			answers:    []models.SubmittedAnswer{{QuestionID: "gone", Answer: json.RawMessage(`0`)}, {QuestionID: "mc1", Answer: json.RawMessage(`0`)}},
			wantMarks:  1,
			wantStatus: models.GradingComplete,
		},
		{
			name:       "repeated answer counts once",
			answers:    []models.SubmittedAnswer{{QuestionID: "mc1", Answer: json.RawMessage(`0`)}, {QuestionID: "mc1", Answer: json.RawMessage(`0`)}},
			wantMarks:  1,
			wantStatus: models.GradingComplete,
		},
		{
			name:       "empty answer list",
			answers:    []models.SubmittedAnswer{},
			wantMarks:  0,
			wantStatus: models.GradingComplete,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marks, status := GradeAnswers(exam, tt.answers)
			if marks != tt.wantMarks || status != tt.wantStatus {
				t.Errorf("GradeAnswers() = (%v, %s), want (%v, %s)", marks, status, tt.wantMarks, tt.wantStatus)
			}
		})
	}
}
