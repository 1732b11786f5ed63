package model

import (
	"github.com/google/uuid"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
)

// SessionID identifies one conversation held by a front end
type SessionID string

// NewSessionID generates a new UUID v4 SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// Reply is the outcome of handling one query. Text is always set.
type Reply struct {
	Query      string
	Text       string
	Categories []types.Category
	Route      types.Route
	Cached     bool
}

// CategoryStrings returns the categories as plain strings
func (r *Reply) CategoryStrings() []string {
	out := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		out[i] = c.String()
	}
	return out
}
