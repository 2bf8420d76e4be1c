package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when a caller omits or malforms a required input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrQuestionNotFound indicates the referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrPersonNotFound indicates the referenced person does not exist.
	ErrPersonNotFound = errors.New("person not found")
	// ErrNoQuestionsAvailable is returned when the question set is empty.
	ErrNoQuestionsAvailable = errors.New("no questions available")
	// ErrStoreUnavailable marks a transient store failure. Safe to retry.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidQuestion is returned by imports that carry a malformed question.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidPerson is returned when profile fields fail validation.
	ErrInvalidPerson = errors.New("invalid person")
)

// Unavailable wraps a store failure so that errors.Is(err, ErrStoreUnavailable) holds.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
