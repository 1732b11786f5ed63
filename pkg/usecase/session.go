package usecase

import (
	"sync"

	"github.com/secmon-lab/lifeguide/pkg/domain/model"
)

// DefaultMaxSessions bounds the number of conversations kept by a registry
const DefaultMaxSessions = 1000

// Session is one conversation and its bounded history
type Session struct {
	ID      model.SessionID
	history *model.History
}

// NewSession creates a session with a fresh ID
func NewSession(historySize int) *Session {
	return newSession(model.NewSessionID(), historySize)
}

func newSession(id model.SessionID, historySize int) *Session {
	return &Session{
		ID:      id,
		history: model.NewHistory(historySize),
	}
}

// History returns the session history
func (s *Session) History() *model.History {
	return s.history
}

type sessionSlot struct {
	session  *Session
	lastUsed uint64
}

// SessionRegistry hands out sessions by ID for front ends that serve several
// conversations. The least recently used session is dropped when the
// registry is full.
type SessionRegistry struct {
	mu          sync.Mutex
	sessions    map[model.SessionID]*sessionSlot
	historySize int
	maxSessions int
	tick        uint64
}

func NewSessionRegistry(historySize, maxSessions int) *SessionRegistry {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &SessionRegistry{
		sessions:    make(map[model.SessionID]*sessionSlot),
		historySize: historySize,
		maxSessions: maxSessions,
	}
}

// Get returns the session for id, creating it when unknown. An empty id
// starts a new session with a generated ID.
func (r *SessionRegistry) Get(id model.SessionID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = model.NewSessionID()
	}

	if slot, ok := r.sessions[id]; ok {
		slot.lastUsed = r.nextTick()
		return slot.session
	}

	if len(r.sessions) >= r.maxSessions {
		r.evictOldestLocked()
	}

	s := newSession(id, r.historySize)
	r.sessions[id] = &sessionSlot{session: s, lastUsed: r.nextTick()}
	return s
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) nextTick() uint64 {
	r.tick++
	return r.tick
}

func (r *SessionRegistry) evictOldestLocked() {
	var oldestID model.SessionID
	var oldest uint64
	for id, slot := range r.sessions {
		if oldestID == "" || slot.lastUsed < oldest {
			oldestID = id
			oldest = slot.lastUsed
		}
	}
	delete(r.sessions, oldestID)
}
