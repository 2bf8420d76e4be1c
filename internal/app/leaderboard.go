package app

import (
	"context"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-service/internal/domain"
)

// PeopleLister is the read side the leaderboard needs.
type PeopleLister interface {
	ListPeople(ctx context.Context, filter domain.PeopleFilter, order domain.PeopleSort) ([]domain.Person, error)
}

// Leaderboard fans out score-ordered snapshots to subscribers. Notify only marks the
// board dirty; Run reloads it from the store and broadcasts, so a burst of correct
// answers costs one listing.
//
// Snapshot callers only share a listing that started after they called, so a
// snapshot taken after a committed write always includes it.
type Leaderboard struct {
	people  PeopleLister
	size    int
	timeout time.Duration
	now     func() time.Time
	sf      singleflight.Group
	started atomic.Uint64
	dirty   chan struct{}

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

// NewLeaderboard keeps the top size entries (all when size <= 0).
func NewLeaderboard(people PeopleLister, size int, timeout time.Duration) *Leaderboard {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Leaderboard{
		people:      people,
		size:        size,
		timeout:     timeout,
		now:         time.Now,
		dirty:       make(chan struct{}, 1),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Notify implements ScoreNotifier. It never blocks.
func (l *Leaderboard) Notify() {
	select {
	case l.dirty <- struct{}{}:
	default:
	}
}

// Run refreshes subscribers until ctx is done.
func (l *Leaderboard) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.dirty:
			if !l.hasSubscribers() {
				continue
			}
			lb, err := l.Snapshot(ctx)
			if err != nil {
				log.Printf("leaderboard refresh failed: %v", err)
				continue
			}
			l.broadcast(lb)
		}
	}
}

// Snapshot loads the current ranking. Concurrent callers share one store listing.
func (l *Leaderboard) Snapshot(ctx context.Context) (domain.Leaderboard, error) {
	// Loads are keyed by how many had started when the caller arrived. A load under
	// that key bumps the counter first, so it began after this call.
	key := strconv.FormatUint(l.started.Load(), 10)
	v, err, _ := l.sf.Do(key, func() (interface{}, error) {
		l.started.Add(1)
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		people, err := l.people.ListPeople(loadCtx, domain.PeopleFilter{}, domain.DefaultPeopleSort)
		if err != nil {
			return domain.Leaderboard{}, err
		}
		return l.rank(people), nil
	})
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return v.(domain.Leaderboard), nil
}

// Subscribe returns a channel primed with the current snapshot.
// The caller must invoke the returned cancel function to avoid leaks.
func (l *Leaderboard) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	ch := make(chan domain.Leaderboard, 8)
	l.mu.Lock()
	l.subscribers[ch] = struct{}{}
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subscribers[ch]; ok {
			delete(l.subscribers, ch)
			close(ch)
		}
		l.mu.Unlock()
	}

	initial, err := l.Snapshot(ctx)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	l.mu.Lock()
	// A broadcast that raced the initial load is newer; keep it.
	if _, ok := l.subscribers[ch]; ok && len(ch) == 0 {
		ch <- initial
	}
	l.mu.Unlock()
	return ch, cancel, nil
}

func (l *Leaderboard) hasSubscribers() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subscribers) > 0
}

func (l *Leaderboard) broadcast(lb domain.Leaderboard) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subscribers {
		sendLatest(ch, lb)
	}
}

// sendLatest drops the oldest queued snapshot when a slow subscriber's buffer is full.
func sendLatest(ch chan domain.Leaderboard, lb domain.Leaderboard) {
	select {
	case ch <- lb:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- lb
	}
}

func (l *Leaderboard) rank(people []domain.Person) domain.Leaderboard {
	if l.size > 0 && len(people) > l.size {
		people = people[:l.size]
	}
	entries := make([]domain.LeaderboardEntry, len(people))
	for i, p := range people {
		entries[i] = domain.LeaderboardEntry{
			Rank:   i + 1,
			ID:     p.ID,
			Name:   p.Name,
			Gender: p.Gender,
			Avatar: p.Avatar,
			Score:  p.Score,
		}
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: l.now().UTC()}
}
