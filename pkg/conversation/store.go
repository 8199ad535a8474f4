// Package conversation holds the ordered, append-only turn history of a chat
// session.
package conversation

import (
	"sync"

	"github.com/papercomputeco/tutor/pkg/llm"
	"github.com/papercomputeco/tutor/pkg/merkle"
)

// Store is the conversation history of one session. Turns are kept in
// insertion order and chained by content hash, so two stores holding the same
// history report the same Head. Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	chain *merkle.Chain
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{chain: merkle.NewChain()}
}

// Append records a turn at the end of the history.
func (s *Store) Append(turn llm.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain.Append(turn)
}

// All returns a copy of the history, oldest turn first.
func (s *Store) All() []llm.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := s.chain.Nodes()
	turns := make([]llm.Turn, len(nodes))
	for i, n := range nodes {
		turns[i] = n.Content.(llm.Turn)
	}
	return turns
}

// Len returns the number of turns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain.Len()
}

// Head returns the content hash of the latest turn, or "" when empty.
func (s *Store) Head() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain.Head()
}

// Reset clears the history.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain.Reset()
}
