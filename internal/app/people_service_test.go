package app_test

import (
	"context"
	"errors"
	"testing"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
)

func TestCreateStartsAtZero(t *testing.T) {
	service := app.NewPeopleService(memory.NewStore(), nil, 0)

	p, err := service.Create(context.Background(), domain.ProfileUpdate{Name: "  Ann ", Age: 30, Gender: domain.GenderFemale})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" || p.Name != "Ann" || p.Score != 0 {
		t.Fatalf("unexpected person %+v", p)
	}
}

func TestCreateValidates(t *testing.T) {
	service := app.NewPeopleService(memory.NewStore(), nil, 0)
	cases := []domain.ProfileUpdate{
		{Name: "", Age: 30, Gender: domain.GenderFemale},
		{Name: "Ann", Age: 0, Gender: domain.GenderFemale},
		{Name: "Ann", Age: 30, Gender: "robot"},
	}
	for _, c := range cases {
		if _, err := service.Create(context.Background(), c); !errors.Is(err, domain.ErrInvalidPerson) {
			t.Fatalf("expected invalid person for %+v, got %v", c, err)
		}
	}
}

func TestUpdateKeepsScore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := app.NewPeopleService(store, nil, 0)

	p, err := service.Create(ctx, domain.ProfileUpdate{Name: "Ann", Age: 30, Gender: domain.GenderFemale})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.AwardPoints(ctx, p.ID); err != nil {
		t.Fatalf("award: %v", err)
	}

	name := "Anna"
	updated, err := service.Update(ctx, p.ID, domain.ProfilePatch{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Anna" || updated.Age != 30 || updated.Score != 100 {
		t.Fatalf("unexpected update result %+v", updated)
	}
}

func TestDeleteMissing(t *testing.T) {
	service := app.NewPeopleService(memory.NewStore(), nil, 0)
	if err := service.Delete(context.Background(), "nope"); !errors.Is(err, domain.ErrPersonNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
