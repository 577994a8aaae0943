package service

import (
	"sync"
	"time"

	"github.com/foodbridge/pickup-api/internal/models"
	appErrors "github.com/foodbridge/pickup-api/pkg/errors"
)

// draftStore holds in-flight enrollment drafts in memory. A draft expires ttl
// after its last mutation; expired entries are dropped lazily on access.
// Mutations to the same draft are serialized through a per-entry mutex, so two
// concurrent requests never interleave on one draft. Mutators must replace
// slice fields wholesale instead of writing into them, because Get hands out
// shallow copies.
type draftStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]*draftEntry
}

type draftEntry struct {
	mu    sync.Mutex
	draft models.EnrollmentDraft
}

func newDraftStore(ttl time.Duration) *draftStore {
	return &draftStore{
		ttl:   ttl,
		items: make(map[string]*draftEntry),
	}
}

func (s *draftStore) Save(draft models.EnrollmentDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[draft.ID] = &draftEntry{draft: draft}
}

func (s *draftStore) Get(id string) (models.EnrollmentDraft, bool) {
	s.mu.RLock()
	entry, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return models.EnrollmentDraft{}, false
	}

	entry.mu.Lock()
	draft := entry.draft
	entry.mu.Unlock()

	if time.Since(draft.UpdatedAt) > s.ttl {
		s.Delete(id)
		return models.EnrollmentDraft{}, false
	}
	return draft, true
}

func (s *draftStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Mutate applies fn to the stored draft under its entry lock and refreshes the
// expiry clock on success. fn receives the stored draft itself, not a copy.
func (s *draftStore) Mutate(id string, fn func(*models.EnrollmentDraft) error) (models.EnrollmentDraft, error) {
	s.mu.RLock()
	entry, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return models.EnrollmentDraft{}, appErrors.Clone(appErrors.ErrNotFound, "enrollment draft not found")
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if time.Since(entry.draft.UpdatedAt) > s.ttl {
		s.Delete(id)
		return models.EnrollmentDraft{}, appErrors.Clone(appErrors.ErrDraftExpired, "enrollment draft expired")
	}
	if err := fn(&entry.draft); err != nil {
		return models.EnrollmentDraft{}, err
	}
	entry.draft.UpdatedAt = time.Now().UTC()
	return entry.draft, nil
}
