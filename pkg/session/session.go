// Package session ties together the conversation history, the tutoring state
// and the completion client for one chat session.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/papercomputeco/tutor/pkg/completion"
	"github.com/papercomputeco/tutor/pkg/conversation"
	"github.com/papercomputeco/tutor/pkg/llm"
	"github.com/papercomputeco/tutor/pkg/tutor"
)

// Variant selects how a session talks to the model.
type Variant string

const (
	// VariantTutor steers the model with the tutoring phase policy.
	VariantTutor Variant = "tutor"
	// VariantChat forwards the conversation as is.
	VariantChat Variant = "chat"
)

// ParseVariant validates a variant name.
func ParseVariant(name string) (Variant, error) {
	switch v := Variant(name); v {
	case VariantTutor, VariantChat:
		return v, nil
	}
	return "", fmt.Errorf("unknown variant %q (want %q or %q)", name, VariantTutor, VariantChat)
}

// Session is the explicit context of one conversation. Submit and Reset are
// serialized, so a session can be shared by concurrent requests from the same
// client. Readers never wait for an exchange in flight.
type Session struct {
	id      string
	variant Variant
	model   string
	client  completion.Client
	logger  *zap.Logger

	exchange sync.Mutex // held for a whole Submit or Reset
	mu       sync.RWMutex
	store    *conversation.Store
	state    tutor.LearningState
}

// Snapshot is a point-in-time copy of a session for rendering.
type Snapshot struct {
	ID            string               `json:"id"`
	Variant       Variant              `json:"variant"`
	Model         string               `json:"model"`
	Turns         []llm.Turn           `json:"turns"`
	Head          string               `json:"head,omitempty"`
	LearningState *tutor.LearningState `json:"learning_state"`
}

// New creates an empty session. The client is owned by the caller and may be
// shared across sessions.
func New(id string, variant Variant, client completion.Client, model string, logger *zap.Logger) *Session {
	if model == "" {
		model = llm.DefaultModel
	}

	return &Session{
		id:      id,
		variant: variant,
		model:   model,
		client:  client,
		logger:  logger.With(zap.String("session", id), zap.String("variant", string(variant))),
		store:   conversation.NewStore(),
		state:   tutor.NewLearningState(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Variant returns how the session talks to the model.
func (s *Session) Variant() Variant {
	return s.variant
}

// Submit records the user's text, asks the model for a reply and records it.
// On failure the user's turn stays in the history, no reply is recorded and
// the learning state is left as it was; the error is a
// *completion.CompletionError.
func (s *Session) Submit(ctx context.Context, text string) (string, error) {
	s.exchange.Lock()
	defer s.exchange.Unlock()

	s.mu.Lock()
	s.store.Append(llm.UserTurn(text))
	s.mu.Unlock()

	var systemPrompt *string
	if s.variant == VariantTutor {
		prompt := tutor.SelectPrompt(s.LearningState())
		systemPrompt = &prompt
	}

	reply, err := s.client.Complete(ctx, systemPrompt, s.store.All(), s.model)
	if err != nil {
		s.logger.Error("completion failed", zap.Int("turns", s.store.Len()), zap.Error(err))
		return "", err
	}

	s.mu.Lock()
	s.store.Append(llm.AssistantTurn(reply))
	previous := s.state.Phase
	if s.variant == VariantTutor {
		s.state = tutor.Advance(s.state, text, s.store.Len())
	}
	current := s.state.Phase
	s.mu.Unlock()

	if current != previous {
		s.logger.Info("learning phase advanced",
			zap.String("from", string(previous)),
			zap.String("to", string(current)),
		)
	}

	s.logger.Debug("exchange recorded",
		zap.Int("turns", s.store.Len()),
		zap.String("head", truncate(s.store.Head(), 16)),
	)

	return reply, nil
}

// Reset clears the history and the learning state.
func (s *Session) Reset() {
	s.exchange.Lock()
	defer s.exchange.Unlock()

	s.mu.Lock()
	s.store.Reset()
	s.state = tutor.NewLearningState()
	s.mu.Unlock()

	s.logger.Info("session reset")
}

// Turns returns the conversation history, oldest first.
func (s *Session) Turns() []llm.Turn {
	return s.store.All()
}

// Head returns the content hash of the latest turn, or "" when the history is
// empty. It changes whenever the history does.
func (s *Session) Head() string {
	return s.store.Head()
}

// LearningState returns a copy of the tutoring state.
func (s *Session) LearningState() tutor.LearningState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Snapshot copies the session for rendering. LearningState is nil for the
// chat variant.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		ID:      s.id,
		Variant: s.variant,
		Model:   s.model,
		Turns:   s.store.All(),
		Head:    s.store.Head(),
	}

	if s.variant == VariantTutor {
		state := s.state.Clone()
		snap.LearningState = &state
	}

	return snap
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
