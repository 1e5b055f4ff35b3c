package storage

import (
	"fluxgen-backend/internal/model"
)

// Storage 会话状态存储。状态只在会话有效期内存在，不做任何落盘持久化。
type Storage interface {
	CreateSession(session *model.SessionState) error
	GetSession(sessionID string) (*model.SessionState, error)
	UpdateSession(session *model.SessionState) error
	DeleteSession(sessionID string) error
	ListSessions() ([]*model.SessionState, error)

	Init() error
	Close() error
}
