package schema

import (
	"math"
	"net/url"
	"strings"

	"fluxgen-backend/internal/model"
)

// 各字段的错误消息，与字段声明一一对应
const (
	msgInvalidPrompt              = "Invalid Prompt"
	msgInvalidRawMode             = "Invalid Raw Mode"
	msgInvalidSeed                = "Invalid Seed"
	msgInvalidAspectRatio         = "Invalid Aspect Ratio"
	msgInvalidImagePrompt         = "Invalid Image Prompt"
	msgInvalidOutputFormat        = "Invalid Output Format"
	msgInvalidSafetyTolerance     = "Invalid Safety Tolerance"
	msgInvalidImagePromptStrength = "Invalid Image Prompt Strength"
)

// fieldRule 单个字段的校验规则：从原始值映射到 req 上，失败时返回 false
type fieldRule struct {
	name    string
	message string
	apply   func(value interface{}, present bool, req *model.GenerationRequest) bool
}

// rules 按声明顺序排列，错误消息的拼接顺序由此决定，校验不短路
var rules = []fieldRule{
	{
		name:    "prompt",
		message: msgInvalidPrompt,
		apply: func(value interface{}, present bool, req *model.GenerationRequest) bool {
			if !present {
				return false
			}
			s, ok := value.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return false
			}
			req.Prompt = s
			return true
		},
	},
	{
		name:    "raw",
		message: msgInvalidRawMode,
		apply: func(value interface{}, present bool, req *model.GenerationRequest) bool {
			if !present {
				req.Raw = false
				return true
			}
			b, ok := value.(bool)
			if !ok {
				return false
			}
			req.Raw = b
			return true
		},
	},
	{
		name:    "seed",
		message: msgInvalidSeed,
		apply: func(value interface{}, present bool, req *model.GenerationRequest) bool {
			if !present {
				return true
			}
			n, ok := asWholeNumber(value)
			if !ok {
				return false
			}
			req.Seed = &n
			return true
		},
	},
	{
		name:    "aspect_ratio",
		message: msgInvalidAspectRatio,
		apply: func(value interface{}, present bool, req *model.GenerationRequest) bool {
			if !present {
				req.AspectRatio = model.DefaultAspectRatio
				return true
			}
			s, ok := value.(string)
			if !ok || !model.IsValidAspectRatio(s) {
				return false
			}
			req.AspectRatio = s
			return true
		},
	},
	{
		name:    "image_prompt",
		message: msgInvalidImagePrompt,
		apply: func(value interface{}, present bool, req *model.GenerationRequest) bool {
			if !present {
				return true
			}
			s, ok := value.(string)
			if !ok || !isValidURL(s) {
				return false
			}
			req.ImagePrompt = s
			return true
		},
	},
	{
		name:    "output_format",
		message: msgInvalidOutputFormat,
		apply: func(value interface{}, present bool, req *model.GenerationRequest) bool {
			if !present {
				req.OutputFormat = model.DefaultOutputFormat
				return true
			}
			s, ok := value.(string)
			if !ok || !model.IsValidOutputFormat(s) {
				return false
			}
			req.OutputFormat = s
			return true
		},
	},
	{
		name:    "safety_tolerance",
		message: msgInvalidSafetyTolerance,
		apply: func(value interface{}, present bool, req *model.GenerationRequest) bool {
			if !present {
				req.SafetyTolerance = model.DefaultSafetyTolerance
				return true
			}
			n, ok := asWholeNumber(value)
			if !ok || n < 1 || n > 6 {
				return false
			}
			req.SafetyTolerance = n
			return true
		},
	},
	{
		name:    "image_prompt_strength",
		message: msgInvalidImagePromptStrength,
		apply: func(value interface{}, present bool, req *model.GenerationRequest) bool {
			if !present {
				req.ImagePromptStrength = model.DefaultImagePromptStrength
				return true
			}
			f, ok := asFloat(value)
			if !ok || f < 0 || f > 1 {
				return false
			}
			req.ImagePromptStrength = f
			return true
		},
	},
}

// Validate 对规范化后的字段做 schema 校验。
// 缺失的可选字段用默认值补齐；所有违规字段各产生一条消息，
// 按声明顺序用 ", " 拼接返回，不在第一个错误处短路。
func Validate(fields map[string]interface{}) (*model.GenerationRequest, string) {
	req := &model.GenerationRequest{}
	var errs []string

	for _, rule := range rules {
		value, present := fields[rule.name]
		if !rule.apply(value, present, req) {
			errs = append(errs, rule.message)
		}
	}

	if len(errs) > 0 {
		return nil, strings.Join(errs, ", ")
	}
	return req, ""
}

func asWholeNumber(value interface{}) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func asFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func isValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
