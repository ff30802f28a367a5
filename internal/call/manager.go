package call

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

var ErrNotFound = errors.New("call not found")

// Session tracks one live call. Calls are keyed by the extension the
// caller dialed, since the telephony layer presents one call per extension
// at a time.
type Session struct {
	ID         string `json:"call_id"`
	Extension  string `json:"extension"`
	City       string `json:"city"`
	ServiceKey string `json:"service_key"`
	// Greeted records that the current service's opener has played. The
	// dispatcher replays openers only on fresh or re-routed sessions, so
	// this is inspection state, surfaced on the call view.
	Greeted        bool      `json:"greeted"`
	TurnIndex      int       `json:"turn_index"`
	Status         Status    `json:"status"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func (s *Session) Ended() bool { return s.Status == StatusEnded }

type Manager struct {
	mu                sync.RWMutex
	calls             map[string]*Session
	inactivityTimeout time.Duration
	onExpire          func(*Session)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 2 * time.Minute
	}
	return &Manager{
		calls:             make(map[string]*Session),
		inactivityTimeout: inactivityTimeout,
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Begin replaces any previous session on the extension with a fresh one.
// It returns both the new session and the old one, so the caller can purge
// artifacts left behind by an abandoned call.
func (m *Manager) Begin(extension, city string) (fresh, stale *Session) {
	now := time.Now().UTC()
	s := &Session{
		ID:             uuid.NewString(),
		Extension:      extension,
		City:           city,
		Status:         StatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.calls[extension]; ok {
		stale = clone(prev)
	}
	m.calls[extension] = s
	return clone(s), stale
}

func (m *Manager) Get(extension string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.calls[extension]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// SetService routes the call to a different service, clearing the greeted
// flag so the new service's opener plays.
func (m *Manager) SetService(extension, serviceKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.calls[extension]
	if !ok {
		return ErrNotFound
	}
	s.ServiceKey = serviceKey
	s.Greeted = false
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) MarkGreeted(extension string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.calls[extension]
	if !ok {
		return ErrNotFound
	}
	s.Greeted = true
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) AdvanceTurn(extension string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.calls[extension]
	if !ok {
		return ErrNotFound
	}
	s.TurnIndex++
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) End(extension string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.calls[extension]
	if !ok {
		return nil, ErrNotFound
	}
	s.Status = StatusEnded
	s.LastActivityAt = time.Now().UTC()
	return clone(s), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.calls {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for _, s := range m.calls {
		if s.Status != StatusActive {
			continue
		}
		if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		s.Status = StatusEnded
		s.LastActivityAt = now
		expired = append(expired, clone(s))
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	return &c
}
