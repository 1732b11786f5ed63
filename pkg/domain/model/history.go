package model

import (
	"sync"

	"github.com/secmon-lab/lifeguide/pkg/domain/types"
)

// DefaultHistorySize is the number of turns kept for prompt context
const DefaultHistorySize = 5

// Turn is one utterance in a conversation. Seq is an ordinal assigned by the
// History it was appended to.
type Turn struct {
	Role types.Role
	Text string
	Seq  int64
}

// History is a bounded FIFO of the most recent turns. It is safe for
// concurrent use.
type History struct {
	mu    sync.RWMutex
	size  int
	next  int64
	turns []Turn
}

// NewHistory creates a History holding at most size turns. Non-positive sizes
// fall back to DefaultHistorySize.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:  size,
		turns: make([]Turn, 0, size),
	}
}

// Append adds a turn, evicting the oldest when full
func (h *History) Append(role types.Role, text string) Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	turn := Turn{Role: role, Text: text, Seq: h.next}

	if len(h.turns) == h.size {
		copy(h.turns, h.turns[1:])
		h.turns = h.turns[:len(h.turns)-1]
	}
	h.turns = append(h.turns, turn)
	return turn
}

// AppendExchange records a user query followed by the assistant's answer
func (h *History) AppendExchange(query, answer string) {
	h.Append(types.RoleUser, query)
	h.Append(types.RoleAssistant, answer)
}

// Turns returns a snapshot of the retained turns, oldest first
func (h *History) Turns() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of retained turns
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

// Size returns the capacity
func (h *History) Size() int {
	return h.size
}
