package model

import "time"

// SessionResponse 返回给前端的会话视图，凭证只暴露是否已设置
type SessionResponse struct {
	SessionID       string    `json:"session_id"`
	HasCredential   bool      `json:"has_credential"`
	KeyDialogOpen   bool      `json:"key_dialog_open"`
	AspectRatio     string    `json:"aspect_ratio"`
	OutputFormat    string    `json:"output_format"`
	SafetyTolerance int       `json:"safety_tolerance"`
	RawMode         bool      `json:"raw_mode"`
	Pending         bool      `json:"pending"`
	Last            Outcome   `json:"last"`
	Notice          *Notice   `json:"notice,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewSessionResponse 由内部状态构造对外视图
func NewSessionResponse(s *SessionState) SessionResponse {
	return SessionResponse{
		SessionID:       s.ID,
		HasCredential:   s.HasCredential(),
		KeyDialogOpen:   s.KeyDialogOpen,
		AspectRatio:     s.AspectRatio,
		OutputFormat:    s.OutputFormat,
		SafetyTolerance: s.SafetyTolerance,
		RawMode:         s.RawMode,
		Pending:         s.Pending,
		Last:            s.Last,
		Notice:          s.Notice,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
