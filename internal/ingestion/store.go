package ingestion

import (
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/models"
)

// DocumentStore holds the session's uploaded documents in insertion order.
// Identity is filename plus modification timestamp; putting a document whose
// identity already exists removes the old entry and appends the new one at
// the end, so replacements land at the end of the new batch.
//
// The store has no locking of its own: the owning pipeline serializes all
// access, preserving the single-writer model of the session state.
type DocumentStore struct {
	docs  []models.ResumeDocument
	index map[string]int
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{index: make(map[string]int)}
}

// Put inserts or replaces a document, returning true when an existing entry
// with the same identity was replaced.
func (s *DocumentStore) Put(doc models.ResumeDocument) bool {
	replaced := false
	if _, ok := s.index[doc.ID]; ok {
		s.remove(doc.ID)
		replaced = true
	}

	s.index[doc.ID] = len(s.docs)
	s.docs = append(s.docs, doc)
	return replaced
}

// Remove drops a document by identity.
func (s *DocumentStore) Remove(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	s.remove(id)
	return true
}

func (s *DocumentStore) remove(id string) {
	pos := s.index[id]
	s.docs = append(s.docs[:pos], s.docs[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.docs); i++ {
		s.index[s.docs[i].ID] = i
	}
}

// Get returns a document by identity.
func (s *DocumentStore) Get(id string) (models.ResumeDocument, bool) {
	pos, ok := s.index[id]
	if !ok {
		return models.ResumeDocument{}, false
	}
	return s.docs[pos], true
}

// List returns the documents in insertion order. The slice is a copy; the
// documents share the underlying payload bytes, which are never mutated.
func (s *DocumentStore) List() []models.ResumeDocument {
	out := make([]models.ResumeDocument, len(s.docs))
	copy(out, s.docs)
	return out
}

// Len returns the number of stored documents.
func (s *DocumentStore) Len() int {
	return len(s.docs)
}
