package model

import "time"

// provider 支持的全部宽高比，顺序与前端下拉框一致
var AspectRatios = []string{
	"21:9", "16:9", "3:2", "4:3", "5:4", "1:1", "4:5", "3:4", "2:3", "9:16", "9:21",
}

var OutputFormats = []string{"jpeg", "png"}

const (
	DefaultAspectRatio         = "1:1"
	DefaultOutputFormat        = "jpeg"
	DefaultSafetyTolerance     = 2
	DefaultImagePromptStrength = 0.1
)

// IsValidAspectRatio 判断值是否在 11 种枚举之内
func IsValidAspectRatio(v string) bool {
	for _, r := range AspectRatios {
		if r == v {
			return true
		}
	}
	return false
}

func IsValidOutputFormat(v string) bool {
	for _, f := range OutputFormats {
		if f == v {
			return true
		}
	}
	return false
}

// GenerationRequest 是通过校验后的完整请求载荷，除 Prompt 外所有字段都有默认值。
// 凭证不属于载荷本身，由调用方单独携带。
type GenerationRequest struct {
	Prompt              string  `json:"prompt"`
	Raw                 bool    `json:"raw"`
	Seed                *int    `json:"seed,omitempty"`
	AspectRatio         string  `json:"aspect_ratio"`
	ImagePrompt         string  `json:"image_prompt,omitempty"`
	OutputFormat        string  `json:"output_format"`
	SafetyTolerance     int     `json:"safety_tolerance"`
	ImagePromptStrength float64 `json:"image_prompt_strength"`
}

// Outcome 是一次提交的结果。失败时 Image 保留上一次展示的图片，Error 带错误消息
type Outcome struct {
	Image  string `json:"image"`
	Error  string `json:"error"`
	Prompt string `json:"prompt"`
}

// Notice 提交失败时展示的临时提示，到期自动消失
type Notice struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionState 会话级 UI 状态，仅保存在内存中，会话过期即丢弃。
// AspectRatio 等四个字段是前端受控组件的镜像值，提交时会并入表单。
type SessionState struct {
	ID              string    `json:"id"`
	Credential      string    `json:"-"`
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

// HasCredential 凭证本身不对外暴露，只暴露是否已设置
func (s *SessionState) HasCredential() bool {
	return s.Credential != ""
}
