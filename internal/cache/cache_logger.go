package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeDelete deletes keys and logs instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

func ExamKey(examID uint) string {
	return fmt.Sprintf("id:%d", examID)
}

func QuestionKey(questionID uint) string {
	return fmt.Sprintf("id:%d", questionID)
}

// InvalidateExamCache drops the cached exam document
func InvalidateExamCache(ctx context.Context, cm *CacheManager, examID uint) {
	SafeDelete(ctx, cm.Exam, ExamKey(examID))
}

// InvalidateQuestionCache drops the cached question record
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, questionID uint) {
	SafeDelete(ctx, cm.Question, QuestionKey(questionID))
}

// FlushDocumentCaches drops every cached exam and question document. Entries
// written by an older build may not decode into the current models.
func FlushDocumentCaches(ctx context.Context, cm *CacheManager) {
	for _, helper := range []*CacheHelper{cm.Exam, cm.Question} {
		if err := helper.InvalidatePattern(ctx, "id:*"); err != nil {
			slog.ErrorContext(ctx, "Failed to flush cached documents",
				"error", err,
				"prefix", helper.prefix)
		}
	}
}
