package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles rules that span several fields
type BusinessValidator struct {
	validate *validator.Validate
}

func newBusinessValidator(validate *validator.Validate) *BusinessValidator {
	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()
	return bv
}

// Validate validates struct tags for any struct
func (bv *BusinessValidator) Validate(s any) ValidationErrors {
	return ToValidationErrors(bv.validate.Struct(s))
}

// ValidateQuestionCreate validates question creation business rules
func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	errs := bv.Validate(req)
	if len(errs) > 0 {
		return errs
	}
	return ValidateQuestionContent(req.Kind, req.Options, req.CorrectAnswer)
}

// ValidateExamCompose checks the selection payload for the chosen mode
func (bv *BusinessValidator) ValidateExamCompose(req *ExamComposeRequest) ValidationErrors {
	errs := bv.Validate(req)
	if len(errs) > 0 {
		return errs
	}

	switch req.SelectionMode {
	case models.SelectionManual:
		if len(req.QuestionIDs) == 0 {
			errs = append(errs, ValidationError{
				Field:   "question_ids",
				Message: "at least one question id is required for manual selection",
				Rule:    "business_logic",
			})
		}
		for i, id := range req.QuestionIDs {
			if id == 0 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("question_ids[%d]", i),
					Message: "must be a positive id",
					Value:   id,
					Rule:    "business_logic",
				})
			}
		}
	case models.SelectionAuto:
		if req.Count < 1 {
			errs = append(errs, ValidationError{
				Field:   "count",
				Message: "must be at least 1 for automatic selection",
				Value:   req.Count,
				Rule:    "business_logic",
			})
		}
	}

	return errs
}

// ValidateQuestionContent checks that objective questions carry a correct answer
// that indexes or equals one of their options. Boolean questions without options
// are checked against models.DefaultBooleanOptions.
func ValidateQuestionContent(kind models.QuestionKind, options []string, correctAnswer json.RawMessage) ValidationErrors {
	var errs ValidationErrors

	for i, opt := range options {
		if strings.TrimSpace(opt) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("options[%d]", i),
				Message: "option cannot be empty",
				Rule:    "business_logic",
			})
		}
	}

	switch kind {
	case models.FreeText:
		if len(options) > 0 {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: "free text questions cannot have options",
				Value:   len(options),
				Rule:    "business_logic",
			})
		}
		return errs
	case models.Boolean:
		if len(options) == 0 {
			options = models.DefaultBooleanOptions
		}
		if len(options) != 2 {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: "boolean questions have exactly two options",
				Value:   len(options),
				Rule:    "business_logic",
			})
		}
	case models.MultipleChoice:
		if len(options) < 2 {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: "multiple choice questions need at least two options",
				Value:   len(options),
				Rule:    "business_logic",
			})
		}
	}

	if !correctAnswerMatches(kind, options, correctAnswer) {
		errs = append(errs, ValidationError{
			Field:   "correct_answer",
			Message: "must be an option index or one of the option values",
			Value:   string(correctAnswer),
			Rule:    "business_logic",
		})
	}

	return errs
}

func correctAnswerMatches(kind models.QuestionKind, options []string, raw json.RawMessage) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return false
	}

	switch v := value.(type) {
	case json.Number:
		idx, err := v.Int64()
		return err == nil && idx >= 0 && idx < int64(len(options))
	case string:
		for _, opt := range options {
			if opt == v {
				return true
			}
		}
		return false
	case bool:
		return kind == models.Boolean
	default:
		return false
	}
}

// registerBusinessRules registers custom tag validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("exam_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	bv.validate.RegisterValidation("question_kind", func(fl validator.FieldLevel) bool {
		return models.QuestionKind(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("difficulty_level", func(fl validator.FieldLevel) bool {
		return models.DifficultyLevel(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("selection_mode", func(fl validator.FieldLevel) bool {
		mode := models.SelectionMode(fl.Field().String())
		return mode == models.SelectionManual || mode == models.SelectionAuto
	})
}
