package docstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore is an in-memory implementation of DocumentStore for
// development and testing.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
	indexes     map[string][]string // collection -> unique fields
}

// NewMemoryStore creates a new in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Document),
		indexes:     make(map[string][]string),
	}
}

// CreateCollection creates a named collection. No-op if it already exists.
func (s *MemoryStore) CreateCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[name]; !exists {
		s.collections[name] = nil
	}
	return nil
}

// DropCollection removes a collection and its documents.
func (s *MemoryStore) DropCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, name)
	delete(s.indexes, name)
	return nil
}

// CollectionExists reports whether a collection exists.
func (s *MemoryStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.collections[name]
	return exists, nil
}

// EnsureUniqueIndex enforces uniqueness of a top-level field.
func (s *MemoryStore) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.indexes[collection], field) {
		s.indexes[collection] = append(s.indexes[collection], field)
	}
	return nil
}

// InsertOne adds a document, enforcing unique indexes.
func (s *MemoryStore) InsertOne(ctx context.Context, collection string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(collection, doc)
}

// InsertMany adds documents in order, stopping at the first failure.
func (s *MemoryStore) InsertMany(ctx context.Context, collection string, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if err := s.insertLocked(collection, doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) insertLocked(collection string, doc Document) error {
	for _, field := range s.indexes[collection] {
		value, ok := doc[field]
		if !ok {
			continue
		}
		for _, existing := range s.collections[collection] {
			if existing[field] == value {
				return fmt.Errorf("%w: %s=%v", ErrDuplicateKey, field, value)
			}
		}
	}

	s.collections[collection] = append(s.collections[collection], copyDoc(doc))
	return nil
}

// FindOne returns the first matching document, or ErrNoDocuments.
func (s *MemoryStore) FindOne(ctx context.Context, collection string, filter Document) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		if Matches(doc, filter) {
			return copyDoc(doc), nil
		}
	}
	return nil, ErrNoDocuments
}

// Find returns a snapshot of every matching document.
func (s *MemoryStore) Find(ctx context.Context, collection string, filter Document) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Document
	for _, doc := range s.collections[collection] {
		if Matches(doc, filter) {
			result = append(result, copyDoc(doc))
		}
	}
	return result, nil
}

// UpdateOne sets fields on the first matching document.
func (s *MemoryStore) UpdateOne(ctx context.Context, collection string, filter, set Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range s.collections[collection] {
		if !Matches(doc, filter) {
			continue
		}

		for _, field := range s.indexes[collection] {
			value, ok := set[field]
			if !ok {
				continue
			}
			for j, other := range s.collections[collection] {
				if j != i && other[field] == value {
					return false, fmt.Errorf("%w: %s=%v", ErrDuplicateKey, field, value)
				}
			}
		}

		updated := copyDoc(doc)
		for k, v := range set {
			updated[k] = v
		}
		s.collections[collection][i] = updated
		return true, nil
	}
	return false, nil
}

// DeleteOne removes the first matching document.
func (s *MemoryStore) DeleteOne(ctx context.Context, collection string, filter Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range s.collections[collection] {
		if Matches(doc, filter) {
			s.collections[collection] = slices.Delete(s.collections[collection], i, i+1)
			return true, nil
		}
	}
	return false, nil
}

// DeleteMany removes every matching document.
func (s *MemoryStore) DeleteMany(ctx context.Context, collection string, filter Document) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []Document
	var removed int64
	for _, doc := range s.collections[collection] {
		if Matches(doc, filter) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}

	if _, exists := s.collections[collection]; exists {
		s.collections[collection] = kept
	}
	return removed, nil
}

// copyDoc returns a top-level copy to avoid external modifications.
func copyDoc(doc Document) Document {
	copied := make(Document, len(doc))
	for k, v := range doc {
		copied[k] = v
	}
	return copied
}
