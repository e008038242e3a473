package storage

import (
	"fmt"
	"sync"

	"github.com/nicolagi/postd/post"
)

// InMemoryStore is a Store implementation powered by a map. All operations
// serialize on one mutex, which also guards id assignment.
type InMemoryStore struct {
	sync.Mutex
	m      map[int64]post.Post
	lastID int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		m: make(map[int64]post.Post),
	}
}

// NewSeededStore returns an in-memory store holding SeedPosts.
func NewSeededStore() *InMemoryStore {
	s := NewInMemoryStore()
	// Cannot fail for the in-memory implementation.
	_ = Seed(s)
	return s
}

func (s *InMemoryStore) Create(p post.Post) (id int64, err error) {
	s.Lock()
	s.lastID++
	id = s.lastID
	s.m[id] = p
	s.Unlock()
	return id, nil
}

func (s *InMemoryStore) Get(id int64) (post.Post, error) {
	s.Lock()
	p, ok := s.m[id]
	s.Unlock()
	if !ok {
		return post.Post{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *InMemoryStore) Update(id int64, p post.Post) error {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.m[id]; !ok {
		return fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	s.m[id] = p
	return nil
}

func (s *InMemoryStore) Delete(id int64) error {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.m[id]; !ok {
		return fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	delete(s.m, id)
	return nil
}

// Len returns the number of posts currently stored.
func (s *InMemoryStore) Len() int {
	s.Lock()
	defer s.Unlock()
	return len(s.m)
}
