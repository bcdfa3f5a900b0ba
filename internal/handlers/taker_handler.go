package handlers

import (
	"net/http"

	"github.com/examforge/exam-link-service/internal/services"
	"github.com/examforge/exam-link-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// TakerHandler serves the student-facing session endpoints. These are
// unauthenticated; the access gate inside the taker service is what admits or
// denies a student.
type TakerHandler struct {
	BaseHandler
	takerService services.TakerService
}

func NewTakerHandler(takerService services.TakerService, logger utils.Logger) *TakerHandler {
	return &TakerHandler{
		BaseHandler:  NewBaseHandler(logger),
		takerService: takerService,
	}
}

func (h *TakerHandler) StartExam(c *gin.Context) {
	var req services.StartExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.takerService.Start(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "exam session started", resp)
}

type textAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Text       string `json:"text"`
}

func (h *TakerHandler) SetTextAnswer(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req textAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.takerService.SetTextAnswer(c.Request.Context(), sessionID, req.QuestionID, req.Text); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "answer recorded", nil)
}

type toggleOptionRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	OptionID   string `json:"option_id" binding:"required"`
}

func (h *TakerHandler) ToggleOption(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req toggleOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.takerService.ToggleOption(c.Request.Context(), sessionID, req.QuestionID, req.OptionID); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "selection updated", nil)
}

func (h *TakerHandler) GetAnswers(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	answers, err := h.takerService.Answers(c.Request.Context(), sessionID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "answers retrieved", answers)
}

func (h *TakerHandler) SubmitExam(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	result, err := h.takerService.Submit(c.Request.Context(), sessionID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "exam submitted", result)
}

func (h *TakerHandler) GetTimeRemaining(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	remaining, err := h.takerService.TimeRemaining(c.Request.Context(), sessionID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "time remaining", gin.H{"time_remaining": remaining})
}
