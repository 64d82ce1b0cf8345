package storage

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"FiscoBot/bot/chat"
)

// MemoryStore keeps sessions in process memory with a TTL. It backs the
// bot when MongoDB is disabled and serves as the test double.
type MemoryStore struct {
	sessions *cache.Cache
}

// NewMemoryStore creates a session store expiring entries after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: cache.New(ttl, 10*time.Minute),
	}
}

func sessionKey(platform, userID string) string {
	return platform + ":" + userID
}

func (s *MemoryStore) SaveSession(_ context.Context, session *chat.Session) error {
	session.LastActivityAt = time.Now()
	s.sessions.SetDefault(sessionKey(session.Platform, session.UserID), session)
	return nil
}

func (s *MemoryStore) LoadSession(_ context.Context, platform, userID string) (*chat.Session, error) {
	v, ok := s.sessions.Get(sessionKey(platform, userID))
	if !ok {
		return nil, nil
	}
	session, ok := v.(*chat.Session)
	if !ok || !session.IsActive || session.Expired(time.Now()) {
		return nil, nil
	}
	return session, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, platform, userID string) error {
	s.sessions.Delete(sessionKey(platform, userID))
	return nil
}
