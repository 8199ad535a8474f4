package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/papercomputeco/tutor/pkg/completion"
)

// ManagerConfig is the session manager configuration.
type ManagerConfig struct {
	// Variant given to every new session
	Variant Variant

	// Model identifier sent with every completion
	Model string

	// IdleTTL is how long an unused session is kept. Zero keeps sessions for
	// an hour.
	IdleTTL time.Duration
}

// Manager keeps the sessions of a running server, keyed by id. Sessions that
// are not used for IdleTTL are dropped.
type Manager struct {
	config ManagerConfig
	client completion.Client
	logger *zap.Logger
	cache  *cache.Cache
}

// NewManager creates a Manager. Every session it creates shares client.
func NewManager(config ManagerConfig, client completion.Client, logger *zap.Logger) *Manager {
	if config.IdleTTL == 0 {
		config.IdleTTL = time.Hour
	}

	return &Manager{
		config: config,
		client: client,
		logger: logger,
		cache:  cache.New(config.IdleTTL, config.IdleTTL/6),
	}
}

// Create starts a new session with a fresh UUIDv7 identifier.
func (m *Manager) Create() *Session {
	id := uuid.Must(uuid.NewV7()).String()
	s := New(id, m.config.Variant, m.client, m.config.Model, m.logger)
	m.cache.Set(id, s, cache.DefaultExpiration)

	m.logger.Debug("session created", zap.String("session", id))
	return s
}

// Get retrieves a session and extends its lifetime.
func (m *Manager) Get(id string) (*Session, bool) {
	x, found := m.cache.Get(id)
	if !found {
		return nil, false
	}

	s := x.(*Session)
	m.cache.Set(id, s, cache.DefaultExpiration)
	return s, true
}

// GetOrCreate retrieves the session with the given id, or creates a new one
// when it is unknown or expired. created reports which happened.
func (m *Manager) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s, false
		}
	}
	return m.Create(), true
}

// Delete ends a session.
func (m *Manager) Delete(id string) {
	m.cache.Delete(id)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.cache.ItemCount()
}
