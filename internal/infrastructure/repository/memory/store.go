// Package memory is the in-process session store used by single-binary
// deployments and tests. State lives for the lifetime of the process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func New() *Store {
	return &Store{sessions: make(map[string]domain.Session)}
}

func (s *Store) Create(_ context.Context) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = domain.Session{}
	return id, nil
}

func (s *Store) ReplaceRole(_ context.Context, sessionID string, record *domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "replace role", fmt.Errorf("session %s", sessionID))
	}
	session[record.DocType] = record
	return nil
}

// Snapshot copies the role map so concurrent replacements cannot mutate
// a result handed to the caller. Records themselves are immutable after
// processing and are shared.
func (s *Store) Snapshot(_ context.Context, sessionID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "snapshot session", fmt.Errorf("session %s", sessionID))
	}
	view := make(domain.Session, len(session))
	for docType, record := range session {
		view[docType] = record
	}
	return view, nil
}
