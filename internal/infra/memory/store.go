package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"quizhub/internal/domain"
)

// Store is an in-memory implementation of app.DocumentStore, useful for
// tests and demos.
type Store struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewStore() *Store {
	return &Store{docs: make(map[string]json.RawMessage)}
}

func (s *Store) Get(_ context.Context, path string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return clone(doc), nil
}

func (s *Store) Set(_ context.Context, path string, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = clone(doc)
	return nil
}

func (s *Store) SetIfAbsent(_ context.Context, path string, doc json.RawMessage) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path]; ok {
		return false, nil
	}
	s.docs[path] = clone(doc)
	return true, nil
}

func (s *Store) Remove(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
	return nil
}

func (s *Store) List(_ context.Context, collection string) ([]json.RawMessage, error) {
	prefix := collection + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	var paths []string
	for path := range s.docs {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	// Path order keeps listings deterministic across calls.
	sort.Strings(paths)
	docs := make([]json.RawMessage, 0, len(paths))
	for _, path := range paths {
		docs = append(docs, clone(s.docs[path]))
	}
	return docs, nil
}

func clone(doc json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(doc))
	copy(out, doc)
	return out
}
