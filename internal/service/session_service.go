package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"fluxgen-backend/internal/model"
	"fluxgen-backend/internal/storage"
	"fluxgen-backend/pkg/logger"

	"github.com/google/uuid"
)

// SessionService 管理会话级 UI 状态：凭证、API Key 弹窗、
// 四个受控字段的镜像值、pending 标志和上一次的生成结果。
// 所有字段更新都走各自的入口方法，状态收敛在一个视图模型里。
type SessionService struct {
	storage   storage.Storage
	generator *GenerateService
	noticeTTL time.Duration
	mu        sync.Mutex
}

func NewSessionService(s storage.Storage, g *GenerateService, noticeTTL time.Duration) *SessionService {
	return &SessionService{
		storage:   s,
		generator: g,
		noticeTTL: noticeTTL,
	}
}

// CreateSession 页面加载时创建会话，所有字段取默认值
func (s *SessionService) CreateSession() (*model.SessionState, error) {
	now := time.Now()
	session := &model.SessionState{
		ID:              uuid.New().String(),
		AspectRatio:     model.DefaultAspectRatio,
		OutputFormat:    model.DefaultOutputFormat,
		SafetyTolerance: model.DefaultSafetyTolerance,
		RawMode:         false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.storage.CreateSession(session); err != nil {
		return nil, err
	}

	logger.WithField("session_id", session.ID).Info("会话已创建")
	return snapshot(session), nil
}

// snapshot 返回会话状态的副本。存储里的实例会在锁内被后续提交修改，
// 调用方拿到的必须是隔离的拷贝，才能在锁外安全读取
func snapshot(session *model.SessionState) *model.SessionState {
	copied := *session
	if session.Notice != nil {
		notice := *session.Notice
		copied.Notice = &notice
	}
	return &copied
}

// GetState 读取会话状态，过期的临时提示在这里清掉
func (s *SessionService) GetState(sessionID string) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.Notice != nil && time.Now().After(session.Notice.ExpiresAt) {
		session.Notice = nil
		if err := s.storage.UpdateSession(session); err != nil {
			return nil, err
		}
	}

	return snapshot(session), nil
}

// FocusPrompt 首次聚焦提示词输入框时，没有凭证就打开 API Key 弹窗
func (s *SessionService) FocusPrompt(sessionID string) (*model.SessionState, error) {
	return s.update(sessionID, func(session *model.SessionState) error {
		if !session.HasCredential() {
			session.KeyDialogOpen = true
		}
		return nil
	})
}

// ConfirmCredential 确认保存 API Key，空白值拒绝，成功后关闭弹窗
func (s *SessionService) ConfirmCredential(sessionID, value string) (*model.SessionState, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, ErrEmptyCredential
	}

	return s.update(sessionID, func(session *model.SessionState) error {
		session.Credential = trimmed
		session.KeyDialogOpen = false
		return nil
	})
}

// ClearCredential 移除已保存的 API Key
func (s *SessionService) ClearCredential(sessionID string) (*model.SessionState, error) {
	return s.update(sessionID, func(session *model.SessionState) error {
		session.Credential = ""
		return nil
	})
}

func (s *SessionService) SetAspectRatio(sessionID, value string) (*model.SessionState, error) {
	if !model.IsValidAspectRatio(value) {
		return nil, ErrInvalidFieldValue
	}
	return s.update(sessionID, func(session *model.SessionState) error {
		session.AspectRatio = value
		return nil
	})
}

func (s *SessionService) SetOutputFormat(sessionID, value string) (*model.SessionState, error) {
	if !model.IsValidOutputFormat(value) {
		return nil, ErrInvalidFieldValue
	}
	return s.update(sessionID, func(session *model.SessionState) error {
		session.OutputFormat = value
		return nil
	})
}

func (s *SessionService) SetSafetyTolerance(sessionID string, value int) (*model.SessionState, error) {
	if value < 1 || value > 6 {
		return nil, ErrInvalidFieldValue
	}
	return s.update(sessionID, func(session *model.SessionState) error {
		session.SafetyTolerance = value
		return nil
	})
}

func (s *SessionService) SetRawMode(sessionID string, value bool) (*model.SessionState, error) {
	return s.update(sessionID, func(session *model.SessionState) error {
		session.RawMode = value
		return nil
	})
}

// UpdateField 按字段名分发到对应的设置入口，供 HTTP 层统一调用
func (s *SessionService) UpdateField(sessionID, name, value string) (*model.SessionState, error) {
	switch name {
	case "aspect_ratio":
		return s.SetAspectRatio(sessionID, value)
	case "output_format":
		return s.SetOutputFormat(sessionID, value)
	case "safety_tolerance":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, ErrInvalidFieldValue
		}
		return s.SetSafetyTolerance(sessionID, n)
	case "raw":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, ErrInvalidFieldValue
		}
		return s.SetRawMode(sessionID, b)
	default:
		return nil, ErrUnknownField
	}
}

// DeleteSession 页面关闭时丢弃会话
func (s *SessionService) DeleteSession(sessionID string) error {
	return s.storage.DeleteSession(sessionID)
}

// Generate 一次完整的提交：并入凭证和镜像字段后委托给提交管线。
// pending 标志的检查和设置在同一把锁内完成，同会话的并发提交会被拒绝。
func (s *SessionService) Generate(ctx context.Context, sessionID string, fields map[string]string) (model.Outcome, error) {
	s.mu.Lock()
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		s.mu.Unlock()
		return model.Outcome{}, err
	}
	if session.Pending {
		s.mu.Unlock()
		return model.Outcome{}, ErrGenerationPending
	}
	session.Pending = true
	session.UpdatedAt = time.Now()
	if err := s.storage.UpdateSession(session); err != nil {
		s.mu.Unlock()
		return model.Outcome{}, err
	}
	previous := session.Last
	merged := s.mergeFields(session, fields)
	s.mu.Unlock()

	// provider 调用是唯一的阻塞点，不持锁
	outcome := s.generator.Submit(ctx, previous, merged)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err = s.storage.GetSession(sessionID)
	if err != nil {
		// 会话在生成期间过期，结果只能直接返回给本次调用方
		return outcome, nil
	}

	session.Pending = false
	session.Last = outcome
	session.UpdatedAt = time.Now()
	if outcome.Error != "" {
		session.Notice = &model.Notice{
			Message:   outcome.Error,
			ExpiresAt: time.Now().Add(s.noticeTTL),
		}
	}

	if err := s.storage.UpdateSession(session); err != nil {
		logger.Errorf("保存生成结果失败: %v", err)
	}

	return outcome, nil
}

// mergeFields 提交前把凭证和四个镜像字段追加进表单字段集
func (s *SessionService) mergeFields(session *model.SessionState, fields map[string]string) map[string]string {
	merged := make(map[string]string, len(fields)+5)
	for k, v := range fields {
		if v == "" {
			// 表单里留空的可选字段视为缺席，由 schema 补默认值
			continue
		}
		merged[k] = v
	}

	merged["api_key"] = session.Credential
	merged["aspect_ratio"] = session.AspectRatio
	merged["output_format"] = session.OutputFormat
	merged["safety_tolerance"] = strconv.Itoa(session.SafetyTolerance)
	merged["raw"] = strconv.FormatBool(session.RawMode)

	return merged
}

// update 读-改-写一个会话，锁内完成
func (s *SessionService) update(sessionID string, fn func(*model.SessionState) error) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := fn(session); err != nil {
		return nil, err
	}

	session.UpdatedAt = time.Now()
	if err := s.storage.UpdateSession(session); err != nil {
		return nil, err
	}

	return snapshot(session), nil
}
