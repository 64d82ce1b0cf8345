package chat

import "context"

// SessionRepository defines the database operations for sessions.
type SessionRepository interface {
	SaveSession(ctx context.Context, s *Session) error
	LoadSession(ctx context.Context, platform, userID string) (*Session, error)
	DeleteSession(ctx context.Context, platform, userID string) error
}

// RepositorySessionStorage adapts a database repository to the
// SessionStorage interface.
type RepositorySessionStorage struct {
	repo SessionRepository
}

// NewRepositorySessionStorage creates a repository-backed session storage.
func NewRepositorySessionStorage(repo SessionRepository) *RepositorySessionStorage {
	return &RepositorySessionStorage{repo: repo}
}

func (s *RepositorySessionStorage) Save(ctx context.Context, session *Session) error {
	return s.repo.SaveSession(ctx, session)
}

func (s *RepositorySessionStorage) Load(ctx context.Context, platform, userID string) (*Session, error) {
	return s.repo.LoadSession(ctx, platform, userID)
}

func (s *RepositorySessionStorage) Delete(ctx context.Context, platform, userID string) error {
	return s.repo.DeleteSession(ctx, platform, userID)
}
