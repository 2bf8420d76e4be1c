package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
)

func TestCheckAnswerEndToEnd(t *testing.T) {
	ctx := context.Background()
	store, qid, uid := seededStore(t)
	service := app.NewQuestionService(store, store)

	res, err := service.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: qid, Answer: "Paris", UserID: uid})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Correct || res.UpdatedScore == nil || *res.UpdatedScore != 100 {
		t.Fatalf("expected correct with 100, got %+v", res)
	}

	res, err = service.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: qid, Answer: "Paris", UserID: uid})
	if err != nil {
		t.Fatalf("check again: %v", err)
	}
	if res.UpdatedScore == nil || *res.UpdatedScore != 200 {
		t.Fatalf("expected 200, got %+v", res)
	}

	res, err = service.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: qid, Answer: "Berlin", UserID: uid})
	if err != nil {
		t.Fatalf("check wrong: %v", err)
	}
	if res.Correct || res.UpdatedScore != nil {
		t.Fatalf("expected wrong answer without score, got %+v", res)
	}
	p, _ := store.GetPerson(ctx, uid)
	if p.Score != 200 {
		t.Fatalf("expected score to stay 200, got %d", p.Score)
	}
}

func TestCheckAnswerIsExact(t *testing.T) {
	store, qid, uid := seededStore(t)
	service := app.NewQuestionService(store, store)

	for _, answer := range []string{"paris", "Paris ", " Paris", "PARIS"} {
		res, err := service.CheckAnswer(context.Background(), domain.CheckAnswerRequest{QuestionID: qid, Answer: answer, UserID: uid})
		if err != nil {
			t.Fatalf("check %q: %v", answer, err)
		}
		if res.Correct {
			t.Fatalf("expected %q to be wrong", answer)
		}
	}
}

func TestCheckAnswerValidation(t *testing.T) {
	service := app.NewQuestionService(failingStore{}, failingStore{})

	for _, req := range []domain.CheckAnswerRequest{
		{Answer: "a", UserID: "u"},
		{QuestionID: "q", UserID: "u"},
		{QuestionID: "q", Answer: "a"},
		{},
	} {
		_, err := service.CheckAnswer(context.Background(), req)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("expected invalid request for %+v, got %v", req, err)
		}
	}
}

func TestCheckAnswerNotFoundOrdering(t *testing.T) {
	ctx := context.Background()
	store, qid, _ := seededStore(t)
	service := app.NewQuestionService(store, store)

	_, err := service.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: qid, Answer: "Paris", UserID: "ghost"})
	if !errors.Is(err, domain.ErrPersonNotFound) {
		t.Fatalf("expected person not found, got %v", err)
	}

	res, err := service.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: qid, Answer: "Berlin", UserID: "ghost"})
	if err != nil || res.Correct {
		t.Fatalf("expected plain wrong answer, got %+v err=%v", res, err)
	}

	_, err = service.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: "missing", Answer: "Paris", UserID: "ghost"})
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
}

func TestConcurrentCorrectAnswersAllCount(t *testing.T) {
	ctx := context.Background()
	store, qid, uid := seededStore(t)
	service := app.NewQuestionService(store, store)

	const n = 50
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := service.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: qid, Answer: "Paris", UserID: uid})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("check: %v", err)
	}
	p, _ := store.GetPerson(ctx, uid)
	if p.Score != 100*n {
		t.Fatalf("expected %d, got %d", 100*n, p.Score)
	}
}

func TestRandomQuestionEmpty(t *testing.T) {
	store := memory.NewStore()
	service := app.NewQuestionService(store, store)

	if _, err := service.RandomQuestion(context.Background()); !errors.Is(err, domain.ErrNoQuestionsAvailable) {
		t.Fatalf("expected no questions, got %v", err)
	}
}

func TestRandomQuestionWithholdsAnswerAndDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	store, qid, uid := seededStore(t)
	service := app.NewQuestionService(store, store)

	for i := 0; i < 20; i++ {
		q, err := service.RandomQuestion(ctx)
		if err != nil {
			t.Fatalf("random: %v", err)
		}
		if q.ID != qid || len(q.Options) != 4 {
			t.Fatalf("unexpected question %+v", q)
		}
	}
	p, _ := store.GetPerson(ctx, uid)
	if p.Score != 0 {
		t.Fatalf("expected untouched score, got %d", p.Score)
	}
	stored, _ := store.GetQuestionByID(ctx, qid)
	if stored.CorrectAnswer != "Paris" {
		t.Fatalf("question mutated: %+v", stored)
	}
}

func TestRandomQuestionShrunkSet(t *testing.T) {
	store, _, _ := seededStore(t)
	// Offset past the end simulates a deletion between count and fetch.
	service := app.NewQuestionService(store, store, app.WithRandom(func(n int) int { return n }))

	if _, err := service.RandomQuestion(context.Background()); !errors.Is(err, domain.ErrNoQuestionsAvailable) {
		t.Fatalf("expected no questions, got %v", err)
	}
}

func TestRandomQuestionStoreFailure(t *testing.T) {
	service := app.NewQuestionService(failingStore{}, failingStore{})
	if _, err := service.RandomQuestion(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestImportRejectsInvalidQuestions(t *testing.T) {
	store := memory.NewStore()
	service := app.NewQuestionService(store, store)
	ctx := context.Background()

	_, err := service.Import(ctx, []domain.Question{
		{Question: "Ok?", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{Question: "Bad?", Options: []string{"a", "b"}, CorrectAnswer: "c"},
	})
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question, got %v", err)
	}
	if n, _ := store.CountQuestions(ctx); n != 0 {
		t.Fatalf("expected nothing written, got %d", n)
	}

	n, err := service.Import(ctx, []domain.Question{
		{Question: "Ok?", Options: []string{"a", "b"}, CorrectAnswer: "a"},
	})
	if err != nil || n != 1 {
		t.Fatalf("expected one imported, got %d err=%v", n, err)
	}
}

func TestCheckAnswerNotifies(t *testing.T) {
	store, qid, uid := seededStore(t)
	n := &countingNotifier{}
	service := app.NewQuestionService(store, store, app.WithNotifier(n))

	_, _ = service.CheckAnswer(context.Background(), domain.CheckAnswerRequest{QuestionID: qid, Answer: "Berlin", UserID: uid})
	_, _ = service.CheckAnswer(context.Background(), domain.CheckAnswerRequest{QuestionID: qid, Answer: "Paris", UserID: uid})
	if n.calls != 1 {
		t.Fatalf("expected one notification, got %d", n.calls)
	}
}

func seededStore(t *testing.T) (*memory.Store, string, string) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStoreWithClock(func() time.Time { return time.Unix(0, 0) })
	_, err := store.ReplaceQuestions(ctx, []domain.Question{{
		ID:            "q1",
		Question:      "What is the capital of France?",
		Options:       []string{"London", "Berlin", "Paris", "Madrid"},
		CorrectAnswer: "Paris",
	}})
	if err != nil {
		t.Fatalf("seed questions: %v", err)
	}
	if _, err := store.CreatePerson(ctx, domain.Person{ID: "u1", Name: "Ann", Age: 30, Gender: domain.GenderFemale}); err != nil {
		t.Fatalf("seed person: %v", err)
	}
	return store, "q1", "u1"
}

type countingNotifier struct{ calls int }

func (n *countingNotifier) Notify() { n.calls++ }

// failingStore reports every operation as a store outage.
type failingStore struct{ app.Store }

func (failingStore) CountQuestions(context.Context) (int, error) {
	return 0, domain.Unavailable("count questions", errors.New("connection refused"))
}

func (failingStore) GetQuestionByID(context.Context, string) (domain.Question, error) {
	return domain.Question{}, domain.Unavailable("get question", errors.New("connection refused"))
}
