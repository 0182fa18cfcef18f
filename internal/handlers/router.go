package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/examination-service/internal/events"
	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/services"
	"github.com/SAP-F-2025/examination-service/internal/utils"
)

type HandlerManager struct {
	questionHandler   *QuestionHandler
	examHandler       *ExamHandler
	submissionHandler *SubmissionHandler
	gradingHandler    *GradingHandler
	analyticsHandler  *AnalyticsHandler
	authMiddleware    Authenticator
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authMiddleware Authenticator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		questionHandler:   NewQuestionHandler(serviceManager.Question(), logger),
		examHandler:       NewExamHandler(serviceManager.Exam(), serviceManager.Submission(), serviceManager.Export(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), logger),
		gradingHandler:    NewGradingHandler(serviceManager.Grading(), logger),
		analyticsHandler:  NewAnalyticsHandler(serviceManager.Analytics(), logger),
		authMiddleware:    authMiddleware,
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	privileged := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin)
	studentOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Question bank - Teachers and Admins only
		questions := v1.Group("/questions")
		questions.Use(privileged)
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		exams := v1.Group("/exams")
		{
			exams.POST("", privileged, hm.examHandler.ComposeExam)
			exams.PUT("/:id", privileged, hm.examHandler.UpdateExam)
			exams.DELETE("/:id", privileged, hm.examHandler.DeleteExam)
			exams.GET("/:id/results", privileged, hm.examHandler.GetExamResults)
			exams.GET("/:id/export", privileged, hm.examHandler.ExportExamResults)

			// All authenticated users; the service filters by role
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:id", hm.examHandler.GetExam)

			exams.POST("/:id/submissions", studentOnly, hm.examHandler.SubmitExam)
		}

		submissions := v1.Group("/submissions")
		{
			submissions.GET("/me", hm.submissionHandler.GetMyResults)
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
		}

		grading := v1.Group("/grading")
		grading.Use(privileged)
		{
			grading.GET("/pending", hm.gradingHandler.ListPending)
			grading.PUT("/submissions/:id", hm.gradingHandler.GradeSubmission)
		}

		analytics := v1.Group("/analytics")
		analytics.Use(privileged)
		{
			analytics.GET("/stats", hm.analyticsHandler.GetStats)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": events.ServiceName,
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": events.ServiceName,
		})
	})
}
