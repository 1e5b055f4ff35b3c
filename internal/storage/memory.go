package storage

import (
	"time"

	"fluxgen-backend/internal/model"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStorage 基于 go-cache 的内存会话存储，
// 会话按 TTL 过期，janitor 周期性清理，页面关闭后状态随会话一起消失
type MemoryStorage struct {
	sessions *gocache.Cache
}

func NewMemoryStorage(ttl, cleanupInterval time.Duration) *MemoryStorage {
	return &MemoryStorage{
		sessions: gocache.New(ttl, cleanupInterval),
	}
}

func (m *MemoryStorage) Init() error {
	return nil
}

func (m *MemoryStorage) Close() error {
	m.sessions.Flush()
	return nil
}

func (m *MemoryStorage) CreateSession(session *model.SessionState) error {
	if session == nil || session.ID == "" {
		return ErrInvalidData
	}
	m.sessions.Set(session.ID, session, gocache.DefaultExpiration)
	return nil
}

func (m *MemoryStorage) GetSession(sessionID string) (*model.SessionState, error) {
	value, exists := m.sessions.Get(sessionID)
	if !exists {
		return nil, ErrSessionNotFound
	}

	session, ok := value.(*model.SessionState)
	if !ok {
		return nil, ErrInvalidData
	}
	return session, nil
}

// UpdateSession 每次更新会刷新会话的过期时间
func (m *MemoryStorage) UpdateSession(session *model.SessionState) error {
	if session == nil || session.ID == "" {
		return ErrInvalidData
	}
	if _, exists := m.sessions.Get(session.ID); !exists {
		return ErrSessionNotFound
	}
	m.sessions.Set(session.ID, session, gocache.DefaultExpiration)
	return nil
}

func (m *MemoryStorage) DeleteSession(sessionID string) error {
	if _, exists := m.sessions.Get(sessionID); !exists {
		return ErrSessionNotFound
	}
	m.sessions.Delete(sessionID)
	return nil
}

func (m *MemoryStorage) ListSessions() ([]*model.SessionState, error) {
	items := m.sessions.Items()
	sessions := make([]*model.SessionState, 0, len(items))
	for _, item := range items {
		if session, ok := item.Object.(*model.SessionState); ok {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}
