package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"trivia-service/internal/domain"
)

// PeopleService manages player profiles and the leaderboard listing.
type PeopleService struct {
	store    PersonStore
	notifier ScoreNotifier
	award    int
	now      func() time.Time
}

func NewPeopleService(store PersonStore, notifier ScoreNotifier, award int) *PeopleService {
	return NewPeopleServiceWithClock(store, notifier, award, time.Now)
}

// NewPeopleServiceWithClock allows deterministic timestamps in tests.
func NewPeopleServiceWithClock(store PersonStore, notifier ScoreNotifier, award int, now func() time.Time) *PeopleService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if award <= 0 {
		award = domain.AwardPoints
	}
	return &PeopleService{store: store, notifier: notifier, award: award, now: now}
}

// Create registers a new profile. The score always starts at zero.
func (s *PeopleService) Create(ctx context.Context, u domain.ProfileUpdate) (domain.Person, error) {
	name := strings.TrimSpace(u.Name)
	if err := domain.ValidateProfile(name, u.Age, u.Gender); err != nil {
		return domain.Person{}, err
	}
	now := s.now().UTC()
	p, err := s.store.CreatePerson(ctx, domain.Person{
		ID:        uuid.NewString(),
		Name:      name,
		Age:       u.Age,
		Gender:    u.Gender,
		Avatar:    u.Avatar,
		Score:     0,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.Person{}, err
	}
	s.notifier.Notify()
	return p, nil
}

func (s *PeopleService) Get(ctx context.Context, id string) (domain.Person, error) {
	if id == "" {
		return domain.Person{}, domain.ErrPersonNotFound
	}
	return s.store.GetPerson(ctx, id)
}

// Update edits name, age, gender and avatar. The score column is never written here,
// so an edit cannot clobber a concurrent increment.
func (s *PeopleService) Update(ctx context.Context, id string, patch domain.ProfilePatch) (domain.Person, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return domain.Person{}, err
	}
	u := patch.Apply(current)
	if err := domain.ValidateProfile(u.Name, u.Age, u.Gender); err != nil {
		return domain.Person{}, err
	}
	p, err := s.store.UpdateProfile(ctx, id, u)
	if err != nil {
		return domain.Person{}, err
	}
	s.notifier.Notify()
	return p, nil
}

func (s *PeopleService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrPersonNotFound
	}
	if err := s.store.DeletePerson(ctx, id); err != nil {
		return err
	}
	s.notifier.Notify()
	return nil
}

// List returns people matching filter in the requested order.
func (s *PeopleService) List(ctx context.Context, filter domain.PeopleFilter, order domain.PeopleSort) ([]domain.Person, error) {
	return s.store.ListPeople(ctx, filter, order)
}

// AwardPoints credits one award to id without an answer check.
func (s *PeopleService) AwardPoints(ctx context.Context, id string) (domain.Person, error) {
	if id == "" {
		return domain.Person{}, domain.ErrPersonNotFound
	}
	p, err := s.store.IncrementScore(ctx, id, s.award)
	if err != nil {
		return domain.Person{}, err
	}
	s.notifier.Notify()
	return p, nil
}
