package tourism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// Session is the per-visitor auth context: the backend token and the
// profile used to pre-fill recommendation searches.
type Session struct {
	ID        string       `json:"id"`
	Token     string       `json:"-"`
	Username  string       `json:"username"`
	Profile   view.Profile `json:"profile"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SessionStore persists sessions. Implementations must be safe for
// concurrent use and return ErrSessionNotFound for unknown IDs.
type SessionStore interface {
	Get(ctx context.Context, id string) (Session, error)
	Put(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
}

// Sessions gives explicit load/save/clear over a SessionStore.
type Sessions struct {
	store SessionStore
	now   func() time.Time
}

func NewSessions(store SessionStore) *Sessions {
	return &Sessions{store: store, now: time.Now}
}

// Load returns the session for id.
func (s *Sessions) Load(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrSessionNotFound
	}
	return s.store.Get(ctx, id)
}

// Save stores sess, assigning an ID on first save.
func (s *Sessions) Save(ctx context.Context, sess Session) (Session, error) {
	now := s.now().UTC()
	if sess.ID == "" {
		sess.ID = uuid.NewString()
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now
	if sess.Profile.Interests == nil {
		sess.Profile.Interests = []string{}
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Clear removes the session. Clearing an unknown session is not an error.
func (s *Sessions) Clear(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

type sessionKey struct{}

// WithSession attaches sess to ctx so sources can authenticate requests.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the session attached by WithSession.
func SessionFrom(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(Session)
	return sess, ok
}

// TokenFrom returns the bearer token of the session in ctx, if any.
func TokenFrom(ctx context.Context) string {
	sess, _ := SessionFrom(ctx)
	return sess.Token
}
