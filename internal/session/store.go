package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"

	"glog/workout-server/internal/domain"
)

// DefaultSlot is the well-known slot name of the active workout.
const DefaultSlot = "glog_active_workout"

// Store is a durable single slot holding at most one active session.
type Store interface {
	// Load returns the stored session, or nil if the slot is empty. A corrupt
	// record is cleared and reported as an empty slot.
	Load(ctx context.Context) (*domain.ActiveSession, error)
	// Save replaces the slot.
	Save(ctx context.Context, s *domain.ActiveSession) error
	// Clear empties the slot.
	Clear(ctx context.Context) error
}

// UserSlot is the slot name of the active session of one user.
func UserSlot(userHex string) string {
	return DefaultSlot + ":" + userHex
}

func encodeSession(s *domain.ActiveSession) ([]byte, error) {
	return json.Marshal(s)
}

// decodeSession parses a stored record. Empty set lists are dropped so a
// reloaded mapping compares equal to the one that was saved.
func decodeSession(data []byte) (*domain.ActiveSession, error) {
	var s domain.ActiveSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.CompletedSets == nil {
		s.CompletedSets = domain.CompletedSets{}
	}
	for id, sets := range s.CompletedSets {
		if len(sets) == 0 {
			delete(s.CompletedSets, id)
		}
	}
	return &s, nil
}

// MemoryStore keeps the slot in process memory, encoded the same way as the
// durable stores.
type MemoryStore struct {
	mu     sync.Mutex
	data   []byte
	logger *log.Logger
}

// NewMemoryStore returns an empty in-memory slot.
func NewMemoryStore(logger *log.Logger) *MemoryStore {
	if logger == nil {
		logger = log.Default()
	}
	return &MemoryStore{logger: logger}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context) (*domain.ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, nil
	}
	s, err := decodeSession(m.data)
	if err != nil {
		m.logger.Warn("discarding corrupt active workout", "err", err)
		m.data = nil
		return nil, nil
	}
	return s, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, s *domain.ActiveSession) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// SetRaw overwrites the slot with arbitrary bytes.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	m.data = append([]byte(nil), data...)
	m.mu.Unlock()
}

// Raw returns a copy of the stored bytes, nil when empty.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	return append([]byte(nil), m.data...)
}
