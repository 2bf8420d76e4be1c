package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"trivia-service/internal/domain"
)

// Stable error codes for clients.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeQuestionNotFound     = "QUESTION_NOT_FOUND"
	CodePersonNotFound       = "PERSON_NOT_FOUND"
	CodeNoQuestionsAvailable = "NO_QUESTIONS_AVAILABLE"
	CodeStoreUnavailable     = "STORE_UNAVAILABLE"
	CodeInternal             = "INTERNAL"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidPerson),
		errors.Is(err, domain.ErrInvalidQuestion):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, CodeQuestionNotFound
	case errors.Is(err, domain.ErrPersonNotFound):
		return http.StatusNotFound, CodePersonNotFound
	case errors.Is(err, domain.ErrNoQuestionsAvailable):
		return http.StatusNotFound, CodeNoQuestionsAvailable
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, CodeStoreUnavailable
	}
	return http.StatusInternalServerError, CodeInternal
}

// writeError maps domain errors onto status codes. Infrastructure details are
// logged, never returned.
func writeError(c *gin.Context, err error) {
	status, code := classify(err)
	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		c.Header("Retry-After", "1")
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "store temporarily unavailable, retry later"
	case http.StatusInternalServerError:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, errorPayload{Code: code, Message: msg})
}
