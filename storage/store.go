package storage

import (
	"errors"

	"github.com/nicolagi/postd/post"
)

// Store represents a collection of posts keyed by positive integer ids.
type Store interface {
	// Create stores the post under a fresh id and returns that id. Ids are
	// never handed out twice, not even after the post holding one is deleted.
	Create(p post.Post) (id int64, err error)

	// Get should return ErrNotFound if the id is not in the store.
	Get(id int64) (post.Post, error)

	// Update replaces the post wholesale. It should return ErrNotFound if the
	// id is not in the store.
	Update(id int64, p post.Post) error

	// Delete should return ErrNotFound if the id is not in the store.
	Delete(id int64) error
}

var (
	// ErrNotFound indicates an id is not in the store.
	ErrNotFound = errors.New("not found")
)

// SeedPosts are the posts every new service instance starts with, under ids 1
// and 2.
var SeedPosts = []post.Post{
	{Title: "Перший пост", Content: "Це контент першого поста"},
	{Title: "Другий пост", Content: "Це контент другого поста"},
}

// Seed creates SeedPosts, in order, in the given store.
func Seed(s Store) error {
	for _, p := range SeedPosts {
		if _, err := s.Create(p); err != nil {
			return err
		}
	}
	return nil
}
