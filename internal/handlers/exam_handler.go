package handlers

import (
	"net/http"

	"github.com/examforge/exam-link-service/internal/services"
	"github.com/examforge/exam-link-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ExamHandler serves the creator-facing exam endpoints: extraction, drafting,
// publishing, and results.
type ExamHandler struct {
	BaseHandler
	examService   services.ExamService
	parseService  services.ParseService
	exportService services.ExportService
}

func NewExamHandler(
	examService services.ExamService,
	parseService services.ParseService,
	exportService services.ExportService,
	logger utils.Logger,
) *ExamHandler {
	return &ExamHandler{
		BaseHandler:   NewBaseHandler(logger),
		examService:   examService,
		parseService:  parseService,
		exportService: exportService,
	}
}

type extractQuestionsRequest struct {
	Text string `json:"text" binding:"required"`
}

// ExtractQuestions runs LLM extraction over raw exam text and returns the
// structured draft without persisting anything.
func (h *ExamHandler) ExtractQuestions(c *gin.Context) {
	var req extractQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	extracted, err := h.parseService.ExtractQuestions(c.Request.Context(), req.Text)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "questions extracted", extracted)
}

func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req services.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), &req, CurrentUserID(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "exam created", exam)
}

func (h *ExamHandler) GetExam(c *gin.Context) {
	examID := ParseStringIDParam(c, "id")
	if examID == "" {
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID, CurrentUserID(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "exam retrieved", exam)
}

func (h *ExamHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.GetByCreator(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "exams retrieved", exams)
}

func (h *ExamHandler) UpdateQuestions(c *gin.Context) {
	examID := ParseStringIDParam(c, "id")
	if examID == "" {
		return
	}

	var req services.UpdateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	exam, err := h.examService.UpdateQuestions(c.Request.Context(), examID, &req, CurrentUserID(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "questions updated", exam)
}

func (h *ExamHandler) PublishExam(c *gin.Context) {
	examID := ParseStringIDParam(c, "id")
	if examID == "" {
		return
	}

	var req services.PublishExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	exam, err := h.examService.Publish(c.Request.Context(), examID, &req, CurrentUserID(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "exam published", exam)
}

func (h *ExamHandler) DeleteExam(c *gin.Context) {
	examID := ParseStringIDParam(c, "id")
	if examID == "" {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), examID, CurrentUserID(c)); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "exam deleted", nil)
}

func (h *ExamHandler) ListSubmissions(c *gin.Context) {
	examID := ParseStringIDParam(c, "id")
	if examID == "" {
		return
	}

	submissions, err := h.exportService.ListSubmissions(c.Request.Context(), examID, CurrentUserID(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "submissions retrieved", submissions)
}

// ExportResults streams the exam's results as an XLSX workbook.
func (h *ExamHandler) ExportResults(c *gin.Context) {
	examID := ParseStringIDParam(c, "id")
	if examID == "" {
		return
	}

	data, err := h.exportService.ExportResults(c.Request.Context(), examID, CurrentUserID(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="results.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
