package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-admin-console/components/otp"
)

type sessionSource interface {
	Session(id string) (*otp.Session, error)
}

// SessionQuery reads the current snapshot of a verification session.
type SessionQuery struct {
	source sessionSource
}

// NewSessionQuery builds the query.
func NewSessionQuery(source sessionSource) *SessionQuery {
	return &SessionQuery{source: source}
}

var _ gocommand.Querier[string, otp.Snapshot] = (*SessionQuery)(nil)

// Query returns the snapshot of the session with id.
func (q *SessionQuery) Query(_ context.Context, id string) (otp.Snapshot, error) {
	session, err := q.source.Session(id)
	if err != nil {
		return otp.Snapshot{}, err
	}
	return session.Snapshot(), nil
}
