package recommendation

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrDuplicateName is returned by Create when the store already holds the name.
var ErrDuplicateName = errors.New("recommendation name already exists")

// Repository is the persistence gateway the service depends on.
// Find* methods and UpdateScore return (nil, nil) when the row does not exist.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Recommendation, error)
	FindByName(ctx context.Context, name string) (*Recommendation, error)
	FindAll(ctx context.Context) ([]Recommendation, error)
	FindRecent(ctx context.Context, limit int) ([]Recommendation, error)
	Create(ctx context.Context, rec Recommendation) (*Recommendation, error)
	// UpdateScore adds delta to the stored score atomically and returns the updated row.
	UpdateScore(ctx context.Context, id int64, delta int) (*Recommendation, error)
	// Remove deletes the row; removing a missing id is not an error.
	Remove(ctx context.Context, id int64) error
	TopByScore(ctx context.Context, limit int) ([]Recommendation, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	items  map[int64]Recommendation
	nextID int64
}

var _ Repository = (*InMemoryRepository)(nil)

func NewInMemoryRepository(seed []Recommendation) *InMemoryRepository {
	r := &InMemoryRepository{items: make(map[int64]Recommendation, len(seed))}

	var maxID int64
	for _, rec := range seed {
		r.items[rec.ID] = rec
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}
	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id int64) (*Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *InMemoryRepository) FindByName(ctx context.Context, name string) (*Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.items {
		if rec.Name == name {
			found := rec
			return &found, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) FindAll(ctx context.Context) ([]Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.sorted(func(a, b Recommendation) bool { return a.ID < b.ID })
	return out, nil
}

func (r *InMemoryRepository) FindRecent(ctx context.Context, limit int) ([]Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.sorted(func(a, b Recommendation) bool { return a.ID > b.ID })
	return truncate(out, limit), nil
}

func (r *InMemoryRepository) Create(ctx context.Context, rec Recommendation) (*Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Name == rec.Name {
			return nil, ErrDuplicateName
		}
	}

	rec.ID = r.nextID
	r.nextID++
	r.items[rec.ID] = rec
	return &rec, nil
}

func (r *InMemoryRepository) UpdateScore(ctx context.Context, id int64, delta int) (*Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	rec.Score += delta
	r.items[id] = rec
	return &rec, nil
}

func (r *InMemoryRepository) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

func (r *InMemoryRepository) TopByScore(ctx context.Context, limit int) ([]Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.sorted(func(a, b Recommendation) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.ID < b.ID
	})
	return truncate(out, limit), nil
}

// Reset drops every row and restarts ids at 1.
func (r *InMemoryRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[int64]Recommendation)
	r.nextID = 1
	return nil
}

// sorted must be called with the lock held.
func (r *InMemoryRepository) sorted(less func(a, b Recommendation) bool) []Recommendation {
	out := make([]Recommendation, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func truncate(items []Recommendation, limit int) []Recommendation {
	if limit <= 0 {
		return []Recommendation{}
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
