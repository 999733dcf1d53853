// Package store persists sessions between CLI invocations and API calls.
package store

import (
	"context"

	"github.com/sells-group/gajian-cli/internal/session"
)

// ListFilter pages through stored sessions, newest first.
type ListFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for sessions. Get, Save and
// Delete return an error matching model.ErrSessionNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, name string) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Save(ctx context.Context, s *session.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]session.Summary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func (f ListFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// tables is the JSON form of the three session tables.
type tables struct {
	records, locations, workers []byte
}
