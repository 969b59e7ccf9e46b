// Package posttest provides an in-memory post.Repository for tests.
package posttest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/repositories/post"
)

// Memory enforces the same uniqueness and all-or-nothing marking as the
// Postgres repository.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	posts  map[string]*domain.Post

	// InsertErr, when set, is consulted before every insert.
	InsertErr func(p domain.Post) error
	// MarkErr, when set, fails MarkProcessed before anything changes.
	MarkErr error
}

func NewMemory() *Memory {
	return &Memory{posts: make(map[string]*domain.Post)}
}

var _ post.Repository = (*Memory)(nil)

func (m *Memory) InsertIfAbsent(_ context.Context, p domain.Post) (post.InsertResult, error) {
	if m.InsertErr != nil {
		if err := m.InsertErr(p); err != nil {
			return 0, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[p.ExternalID]; ok {
		return post.Duplicate, nil
	}
	m.nextID++
	p.ID = m.nextID
	p.Processed = false
	if p.IngestedAt.IsZero() {
		p.IngestedAt = time.Now().UTC()
	}
	m.posts[p.ExternalID] = &p
	return post.Inserted, nil
}

func (m *Memory) GetByExternalID(_ context.Context, externalID string) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[externalID]
	if !ok {
		return domain.Post{}, post.ErrNotFound
	}
	return *p, nil
}

func (m *Memory) ListUnprocessed(_ context.Context, window domain.Window) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Post
	for _, p := range m.posts {
		if !p.Processed && window.Contains(p.CreatedAt) {
			out = append(out, *p)
		}
	}
	// Map iteration is random; give callers a stable base order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) MarkProcessed(_ context.Context, externalIDs []string) error {
	if m.MarkErr != nil {
		return m.MarkErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids := post.Distinct(externalIDs)
	for _, id := range ids {
		if _, ok := m.posts[id]; !ok {
			return fmt.Errorf("%w: unknown id %s", post.ErrPartialMark, id)
		}
	}
	for _, id := range ids {
		m.posts[id].Processed = true
	}
	return nil
}

func (m *Memory) ResetProcessed(_ context.Context, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := domain.Window{Start: from, End: to}
	var n int64
	for _, p := range m.posts {
		if p.Processed && w.Contains(p.CreatedAt) {
			p.Processed = false
			n++
		}
	}
	return n, nil
}

// All returns every stored post ordered by insertion.
func (m *Memory) All() []domain.Post {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len is the number of stored posts.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}
