package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"trivia-service/internal/domain"
)

// Store is an in-process implementation of app.Store. A single mutex makes every
// operation, including IncrementScore, atomic with respect to the others.
type Store struct {
	clock func() time.Time

	mu        sync.RWMutex
	people    map[string]domain.Person
	questions map[string]domain.Question
	order     []string // question ids, ascending
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock allows deterministic timestamps in tests.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		clock:     now,
		people:    make(map[string]domain.Person),
		questions: make(map[string]domain.Question),
	}
}

func (s *Store) CreatePerson(ctx context.Context, p domain.Person) (domain.Person, error) {
	if err := ctx.Err(); err != nil {
		return domain.Person{}, domain.Unavailable("create person", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Score = 0
	s.people[p.ID] = p
	return p, nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (domain.Person, error) {
	if err := ctx.Err(); err != nil {
		return domain.Person{}, domain.Unavailable("get person", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[id]
	if !ok {
		return domain.Person{}, domain.ErrPersonNotFound
	}
	return p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (domain.Person, error) {
	if err := ctx.Err(); err != nil {
		return domain.Person{}, domain.Unavailable("update person", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[id]
	if !ok {
		return domain.Person{}, domain.ErrPersonNotFound
	}
	p.Name, p.Age, p.Gender, p.Avatar = u.Name, u.Age, u.Gender, u.Avatar
	p.UpdatedAt = s.clock().UTC()
	s.people[id] = p
	return p, nil
}

func (s *Store) DeletePerson(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable("delete person", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[id]; !ok {
		return domain.ErrPersonNotFound
	}
	delete(s.people, id)
	return nil
}

func (s *Store) IncrementScore(ctx context.Context, id string, delta int) (domain.Person, error) {
	if err := ctx.Err(); err != nil {
		return domain.Person{}, domain.Unavailable("increment score", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[id]
	if !ok {
		return domain.Person{}, domain.ErrPersonNotFound
	}
	p.Score += delta
	p.UpdatedAt = s.clock().UTC()
	s.people[id] = p
	return p, nil
}

func (s *Store) ListPeople(ctx context.Context, filter domain.PeopleFilter, order domain.PeopleSort) ([]domain.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Unavailable("list people", err)
	}
	s.mu.RLock()
	out := make([]domain.Person, 0, len(s.people))
	for _, p := range s.people {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()
	domain.SortPeople(out, order)
	return out, nil
}

func (s *Store) GetQuestionByID(ctx context.Context, id string) (domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return domain.Question{}, domain.Unavailable("get question", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(q), nil
}

func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.Unavailable("count questions", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

func (s *Store) GetQuestionAtOffset(ctx context.Context, offset int) (domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return domain.Question{}, domain.Unavailable("question at offset", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 || offset >= len(s.order) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(s.questions[s.order[offset]]), nil
}

func (s *Store) ReplaceQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}
	byID := make(map[string]domain.Question, len(questions))
	order := make([]string, 0, len(questions))
	for _, q := range questions {
		byID[q.ID] = cloneQuestion(q)
		order = append(order, q.ID)
	}
	sort.Strings(order)

	s.mu.Lock()
	s.questions = byID
	s.order = order
	s.mu.Unlock()
	return len(order), nil
}

func (s *Store) Close() error { return nil }

// cloneQuestion keeps callers from sharing the stored options slice.
func cloneQuestion(q domain.Question) domain.Question {
	q.Options = slices.Clone(q.Options)
	return q
}
