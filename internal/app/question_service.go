package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"trivia-service/internal/domain"
)

// QuestionService serves random questions and verifies submitted answers.
type QuestionService struct {
	questions QuestionStore
	people    PersonStore
	notifier  ScoreNotifier
	award     int
	intn      func(n int) int
}

// QuestionOption customizes a QuestionService.
type QuestionOption func(*QuestionService)

// WithAward overrides the points credited per correct answer.
func WithAward(points int) QuestionOption {
	return func(s *QuestionService) {
		if points > 0 {
			s.award = points
		}
	}
}

// WithNotifier registers a listener for score changes.
func WithNotifier(n ScoreNotifier) QuestionOption {
	return func(s *QuestionService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRandom replaces the offset generator; intn must return a value in [0, n).
func WithRandom(intn func(n int) int) QuestionOption {
	return func(s *QuestionService) {
		if intn != nil {
			s.intn = intn
		}
	}
}

func NewQuestionService(questions QuestionStore, people PersonStore, opts ...QuestionOption) *QuestionService {
	s := &QuestionService{
		questions: questions,
		people:    people,
		notifier:  nopNotifier{},
		award:     domain.AwardPoints,
		intn:      rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RandomQuestion picks one question uniformly at random. The store is only read.
func (s *QuestionService) RandomQuestion(ctx context.Context) (domain.PublicQuestion, error) {
	n, err := s.questions.CountQuestions(ctx)
	if err != nil {
		return domain.PublicQuestion{}, err
	}
	if n <= 0 {
		return domain.PublicQuestion{}, domain.ErrNoQuestionsAvailable
	}

	q, err := s.questions.GetQuestionAtOffset(ctx, s.intn(n))
	if errors.Is(err, domain.ErrQuestionNotFound) {
		// The set shrank between count and fetch.
		return domain.PublicQuestion{}, domain.ErrNoQuestionsAvailable
	}
	if err != nil {
		return domain.PublicQuestion{}, err
	}
	return q.Public(), nil
}

// CheckAnswer compares the answer with the stored correct answer and, on a match,
// credits the award to the person with one atomic increment.
//
// The person is only resolved after a match, so a correct answer for an unknown
// user reports domain.ErrPersonNotFound while a wrong one reports Correct=false.
func (s *QuestionService) CheckAnswer(ctx context.Context, req domain.CheckAnswerRequest) (domain.CheckAnswerResult, error) {
	if err := req.Validate(); err != nil {
		return domain.CheckAnswerResult{}, err
	}

	q, err := s.questions.GetQuestionByID(ctx, req.QuestionID)
	if err != nil {
		return domain.CheckAnswerResult{}, err
	}

	if q.CorrectAnswer != req.Answer {
		return domain.CheckAnswerResult{Correct: false}, nil
	}

	person, err := s.people.IncrementScore(ctx, req.UserID, s.award)
	if err != nil {
		return domain.CheckAnswerResult{}, err
	}
	s.notifier.Notify()

	score := person.Score
	return domain.CheckAnswerResult{Correct: true, UpdatedScore: &score}, nil
}

// Import validates every question and then replaces the whole bank. Nothing is
// written when any question is invalid. Missing ids are generated.
func (s *QuestionService) Import(ctx context.Context, questions []domain.Question) (int, error) {
	if len(questions) == 0 {
		return 0, fmt.Errorf("%w: no questions to import", domain.ErrInvalidQuestion)
	}
	batch := make([]domain.Question, len(questions))
	ids := make(map[string]struct{}, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return 0, fmt.Errorf("question %d: %w", i, err)
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if _, dup := ids[q.ID]; dup {
			return 0, fmt.Errorf("question %d: %w: duplicate id %q", i, domain.ErrInvalidQuestion, q.ID)
		}
		ids[q.ID] = struct{}{}
		batch[i] = q
	}
	return s.questions.ReplaceQuestions(ctx, batch)
}
