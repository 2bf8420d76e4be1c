package http

import (
	"errors"
	"net/http"
	"testing"

	"trivia-service/internal/domain"
)

func TestClassifyKeepsKindsDistinct(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidRequest, http.StatusBadRequest, CodeInvalidRequest},
		{domain.ErrQuestionNotFound, http.StatusNotFound, CodeQuestionNotFound},
		{domain.ErrPersonNotFound, http.StatusNotFound, CodePersonNotFound},
		{domain.ErrNoQuestionsAvailable, http.StatusNotFound, CodeNoQuestionsAvailable},
		{domain.Unavailable("get question", errors.New("timeout")), http.StatusServiceUnavailable, CodeStoreUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, c := range cases {
		status, code := classify(c.err)
		if status != c.status || code != c.code {
			t.Fatalf("%v: expected %d/%s, got %d/%s", c.err, c.status, c.code, status, code)
		}
	}
}
