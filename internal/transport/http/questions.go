package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
)

type questionHandlers struct {
	service *app.QuestionService
}

type checkAnswerResponse struct {
	Correct      bool   `json:"correct"`
	Message      string `json:"message"`
	UpdatedScore *int   `json:"updatedScore,omitempty"`
}

func (h *questionHandlers) random(c *gin.Context) {
	q, err := h.service.RandomQuestion(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *questionHandlers) checkAnswer(c *gin.Context) {
	var req domain.CheckAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	res, err := h.service.CheckAnswer(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	msg := "Wrong answer, try again!"
	if res.Correct {
		msg = "Correct answer!"
	}
	c.JSON(http.StatusOK, checkAnswerResponse{Correct: res.Correct, Message: msg, UpdatedScore: res.UpdatedScore})
}
