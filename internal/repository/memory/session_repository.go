package memory

import (
	"context"
	"time"

	"sales-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps sessions in process memory. No janitor goroutine
// is started: expiry is driven by the session manager's amortised sweep.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, 0),
	}
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	r.cache.Set(session.ID, session.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, bool, error) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session).Clone(), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

func (r *SessionRepository) DeleteInactiveSince(ctx context.Context, cutoff time.Time) (int, error) {
	r.cache.DeleteExpired()

	removed := 0
	for id, item := range r.cache.Items() {
		s, ok := item.Object.(*store.Session)
		if !ok || s.LastActiveAt.Before(cutoff) {
			r.cache.Delete(id)
			removed++
		}
	}
	return removed, nil
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
