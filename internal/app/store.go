package app

import (
	"context"

	"trivia-service/internal/domain"
)

// PersonStore persists player profiles. Implementations must apply IncrementScore
// as a single atomic store operation and never rewrite the score from UpdateProfile.
type PersonStore interface {
	CreatePerson(ctx context.Context, p domain.Person) (domain.Person, error)
	GetPerson(ctx context.Context, id string) (domain.Person, error)
	UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (domain.Person, error)
	DeletePerson(ctx context.Context, id string) error
	IncrementScore(ctx context.Context, id string, delta int) (domain.Person, error)
	ListPeople(ctx context.Context, filter domain.PeopleFilter, order domain.PeopleSort) ([]domain.Person, error)
}

// QuestionStore persists the question bank. GetQuestionAtOffset uses a stable ordering
// (ascending id) and returns domain.ErrQuestionNotFound past the end.
type QuestionStore interface {
	GetQuestionByID(ctx context.Context, id string) (domain.Question, error)
	CountQuestions(ctx context.Context) (int, error)
	GetQuestionAtOffset(ctx context.Context, offset int) (domain.Question, error)
	ReplaceQuestions(ctx context.Context, questions []domain.Question) (int, error)
}

// Store is a complete entity store backend.
type Store interface {
	PersonStore
	QuestionStore
	Close() error
}

// ScoreNotifier is told when a score or profile changed.
type ScoreNotifier interface {
	Notify()
}

type nopNotifier struct{}

func (nopNotifier) Notify() {}
