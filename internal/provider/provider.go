package provider

import "context"

// Input 发往图像生成服务的请求载荷。
// SafetyTolerance 是字符串枚举 "1"~"6"，这是 provider 接口的要求。
type Input struct {
	Prompt              string  `json:"prompt"`
	Raw                 bool    `json:"raw"`
	Seed                *int    `json:"seed,omitempty"`
	AspectRatio         string  `json:"aspect_ratio"`
	ImagePrompt         string  `json:"image_prompt,omitempty"`
	OutputFormat        string  `json:"output_format"`
	SafetyTolerance     string  `json:"safety_tolerance"`
	ImagePromptStrength float64 `json:"image_prompt_strength"`
}

// Image 生成结果中的单张图片描述
type Image struct {
	URL         string `json:"url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// Result 生成成功的响应，Images 有序，调用方取第一张
type Result struct {
	Images []Image `json:"images"`
	Seed   int64   `json:"seed,omitempty"`
	Prompt string  `json:"prompt,omitempty"`
}

// APIError 是 provider 自身返回的业务错误（凭证无效、内容策略、配额等），
// 消息需要原样透出给用户；其它错误一律归类为未知失败
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ImageProvider 图像生成服务的统一接口。
// 凭证按调用传入，不做进程级全局配置，避免不同凭证并发时互相覆盖。
type ImageProvider interface {
	Generate(ctx context.Context, credential string, input *Input) (*Result, error)
}
