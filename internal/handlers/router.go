package handlers

import (
	"net/http"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/examforge/exam-link-service/internal/services"
	"github.com/examforge/exam-link-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	examHandler  *ExamHandler
	takerHandler *TakerHandler
	authClient   *casdoorsdk.Client
	logger       utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authClient *casdoorsdk.Client,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		examHandler: NewExamHandler(
			serviceManager.Exam(),
			serviceManager.Parse(),
			serviceManager.Export(),
			logger,
		),
		takerHandler: NewTakerHandler(serviceManager.Taker(), logger),
		authClient:   authClient,
		logger:       logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "exam-link-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Creator routes, behind auth
		exams := v1.Group("/exams")
		exams.Use(AuthMiddleware(hm.authClient, hm.logger))
		{
			exams.POST("/extract", hm.examHandler.ExtractQuestions)
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.PUT("/:id/questions", hm.examHandler.UpdateQuestions)
			exams.POST("/:id/publish", hm.examHandler.PublishExam)
			exams.DELETE("/:id", hm.examHandler.DeleteExam)
			exams.GET("/:id/submissions", hm.examHandler.ListSubmissions)
			exams.GET("/:id/results/export", hm.examHandler.ExportResults)
		}

		// Student routes, gated by the exam's own access settings
		sessions := v1.Group("/sessions")
		{
			sessions.POST("/start", hm.takerHandler.StartExam)
			sessions.POST("/:id/answer", hm.takerHandler.SetTextAnswer)
			sessions.POST("/:id/toggle", hm.takerHandler.ToggleOption)
			sessions.GET("/:id/answers", hm.takerHandler.GetAnswers)
			sessions.POST("/:id/submit", hm.takerHandler.SubmitExam)
			sessions.GET("/:id/time-remaining", hm.takerHandler.GetTimeRemaining)
		}
	}
}
