package domain

import (
	"fmt"
	"sort"
	"strings"
)

// SortField is a person attribute the leaderboard may be ordered by.
type SortField string

const (
	SortByName  SortField = "name"
	SortByAge   SortField = "age"
	SortByScore SortField = "score"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// PeopleFilter narrows a listing. An empty Gender matches everyone.
type PeopleFilter struct {
	Gender Gender
}

// Matches reports whether p passes the filter.
func (f PeopleFilter) Matches(p Person) bool {
	return f.Gender == "" || p.Gender == f.Gender
}

// PeopleSort orders a listing.
type PeopleSort struct {
	Field     SortField
	Direction SortDirection
}

// DefaultPeopleSort is the leaderboard order: highest score first.
var DefaultPeopleSort = PeopleSort{Field: SortByScore, Direction: Descending}

// ParsePeopleSort maps raw query values onto the allow-list. Empty values take defaults.
func ParsePeopleSort(field, direction string) (PeopleSort, error) {
	s := DefaultPeopleSort
	switch SortField(strings.ToLower(field)) {
	case "":
	case SortByName:
		s.Field = SortByName
	case SortByAge:
		s.Field = SortByAge
	case SortByScore:
		s.Field = SortByScore
	default:
		return PeopleSort{}, fmt.Errorf("%w: unsupported sort field %q", ErrInvalidRequest, field)
	}
	switch SortDirection(strings.ToLower(direction)) {
	case "":
	case Ascending:
		s.Direction = Ascending
	case Descending:
		s.Direction = Descending
	default:
		return PeopleSort{}, fmt.Errorf("%w: unsupported sort order %q", ErrInvalidRequest, direction)
	}
	return s, nil
}

// ParsePeopleFilter validates the optional gender filter.
func ParsePeopleFilter(gender string) (PeopleFilter, error) {
	if gender == "" {
		return PeopleFilter{}, nil
	}
	g := Gender(strings.ToLower(gender))
	if !g.Valid() {
		return PeopleFilter{}, fmt.Errorf("%w: unsupported gender %q", ErrInvalidRequest, gender)
	}
	return PeopleFilter{Gender: g}, nil
}

// SortPeople orders people in place for stores without a query engine.
// Ties fall back to id ascending.
func SortPeople(people []Person, s PeopleSort) {
	sort.SliceStable(people, func(i, j int) bool {
		a, b := people[i], people[j]
		var cmp int
		switch s.Field {
		case SortByName:
			cmp = strings.Compare(a.Name, b.Name)
		case SortByAge:
			cmp = a.Age - b.Age
		default:
			cmp = a.Score - b.Score
		}
		if cmp == 0 {
			return a.ID < b.ID
		}
		if s.Direction == Ascending {
			return cmp < 0
		}
		return cmp > 0
	})
}
