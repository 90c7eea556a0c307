package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gagan3036/compliance-platform-api/internal/domain"
	"github.com/Gagan3036/compliance-platform-api/internal/service"
)

// QuizHandler exposes answer submission, history, and analytics endpoints.
type QuizHandler struct {
	Scoring *service.ScoringService
}

// NewQuizHandler wires dependencies.
func NewQuizHandler(scoring *service.ScoringService) *QuizHandler {
	return &QuizHandler{Scoring: scoring}
}

func (h *QuizHandler) Submit(c *gin.Context) {
	var req struct {
		UserID         string `json:"userId"`
		Name           string `json:"name"`
		QuestionID     string `json:"questionId"`
		SelectedOption *int   `json:"selectedOption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ValidationError("Invalid payload"))
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.QuestionID) == "" {
		respondError(c, domain.ValidationError("userId and questionId are required"))
		return
	}
	if req.SelectedOption == nil {
		respondError(c, domain.ValidationError("selectedOption is required"))
		return
	}

	result, err := h.Scoring.Submit(c.Request.Context(), req.UserID, req.Name, req.QuestionID, *req.SelectedOption)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) History(c *gin.Context) {
	user, err := h.Scoring.GetHistory(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *QuizHandler) ShowUsers(c *gin.Context) {
	users, err := h.Scoring.ListAllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *QuizHandler) Analytics(c *gin.Context) {
	analytics, err := h.Scoring.GetAnalytics(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}
