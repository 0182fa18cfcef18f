package services

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/SAP-F-2025/examination-service/internal/models"
)

// ScoreAnswer grades one answer against an embedded question snapshot.
// Free text is never auto graded: it scores 0 and reports pending.
// Objective answers score 1 when the normalized answer equals the normalized
// correct answer and 0 otherwise.
func ScoreAnswer(q models.EmbeddedQuestion, answer json.RawMessage) (marks float64, pending bool) {
	if !q.Kind.IsObjective() {
		return 0, true
	}

	got, ok := normalizeAnswer(answer)
	if !ok {
		return 0, false
	}
	want, ok := normalizeAnswer(q.CorrectAnswer)
	if !ok {
		return 0, false
	}

	if got == want {
		return 1, false
	}
	return 0, false
}

// normalizeAnswer renders a JSON value as a comparable string so that 0 and
// "0" compare equal. null and missing values report false.
func normalizeAnswer(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return "", false
	}

	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return v.String(), true
		}
		if f == 0 {
			// -0 compares equal to 0
			f = 0
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", false
		}
		return buf.String(), true
	}
}

// GradeAnswers scores a submission against the exam's embedded questions.
// Answers to unknown question ids are ignored, as are repeated answers to a
// question already scored. The status is pending when any answered question
// is free text.
func GradeAnswers(exam *models.Exam, answers []models.SubmittedAnswer) (float64, models.GradingStatus) {
	index := exam.QuestionIndex()
	scored := make(map[string]bool, len(answers))

	var total float64
	pending := false
	for _, answer := range answers {
		q, ok := index[answer.QuestionID]
		if !ok || scored[answer.QuestionID] {
			continue
		}
		scored[answer.QuestionID] = true

		marks, needsReview := ScoreAnswer(q, answer.Answer)
		total += marks
		pending = pending || needsReview
	}

	if pending {
		return total, models.GradingPendingManualReview
	}
	return total, models.GradingComplete
}
