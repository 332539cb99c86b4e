package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"gemchat-backend/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Settings are the per-session generation settings adjustable from the UI.
// APIKeyOverride, when set, wins over the secrets file and the environment.
type Settings struct {
	ModelName       string
	Temperature     float32
	MaxOutputTokens int32
	APIKeyOverride  string
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() Settings {
	return Settings{
		ModelName:       models.DefaultModelName,
		Temperature:     models.DefaultTemperature,
		MaxOutputTokens: models.DefaultMaxOutputTokens,
	}
}

// Session is one browser-connected conversation. The turn list is
// append-only for the session's lifetime; a page reload creates a new
// session and so starts an empty history.
type Session struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	LastActive time.Time
	Turns      []models.ChatTurn
	Settings   Settings
}

// Store holds all live sessions in memory. There is no persistence: state
// lives exactly as long as the process, and idle sessions are swept out
// after the configured TTL.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	stopChan chan struct{}
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	// Sweeper goroutine
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.sweep(time.Now())
			}
		}
	}()

	return s
}

func (s *Store) Close() {
	close(s.stopChan)
}

// Create registers a new empty session with default settings.
func (s *Store) Create() *Session {
	now := time.Now()
	sess := &Session{
		ID:         uuid.New(),
		CreatedAt:  now,
		LastActive: now,
		Settings:   DefaultSettings(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return snapshot(sess)
}

// Get returns a copy of the session. Mutations must go through the store.
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(sess), nil
}

// Append adds a turn to the session's history. Insertion order is the only
// ordering; the full ordered list is the context sent to the model.
func (s *Store) Append(id uuid.UUID, turn models.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Turns = append(sess.Turns, turn)
	sess.LastActive = time.Now()
	return nil
}

// Turns returns a copy of the session's ordered history.
func (s *Store) Turns(id uuid.UUID) ([]models.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyTurns(sess.Turns), nil
}

// Clear empties the session's history. Clearing an empty session is a no-op.
func (s *Store) Clear(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Turns = nil
	sess.LastActive = time.Now()
	return nil
}

// Delete removes the session entirely.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Settings returns the session's current settings.
func (s *Store) Settings(id uuid.UUID) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Settings{}, ErrNotFound
	}
	return sess.Settings, nil
}

// SetSettings replaces the session's settings.
func (s *Store) SetSettings(id uuid.UUID, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Settings = settings
	sess.LastActive = time.Now()
	return nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if now.Sub(sess.LastActive) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func snapshot(sess *Session) *Session {
	clone := *sess
	clone.Turns = copyTurns(sess.Turns)
	return &clone
}

func copyTurns(turns []models.ChatTurn) []models.ChatTurn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]models.ChatTurn, len(turns))
	copy(out, turns)
	return out
}
