package service

import (
	"context"
	"errors"
	"strconv"

	"fluxgen-backend/internal/model"
	"fluxgen-backend/internal/provider"
	"fluxgen-backend/internal/schema"
	"fluxgen-backend/pkg/logger"
)

// 未知失败统一用这条消息，不向用户泄露内部细节
const genericErrorMessage = "Error generating image"

// GenerateService 提交管线的单一入口：规范化 → 校验 → 调用 provider → 归类结果。
// 自身无状态，可以被任意并发调用。
type GenerateService struct {
	provider provider.ImageProvider
}

func NewGenerateService(p provider.ImageProvider) *GenerateService {
	return &GenerateService{
		provider: p,
	}
}

// Submit 处理一次表单提交。fields 是表单传输层的原始字段（含 api_key），
// previous 是上一次的结果，失败时保留之前展示的图片。
// 所有错误都在这里收口转换成 Outcome，不向上传播。
func (s *GenerateService) Submit(ctx context.Context, previous model.Outcome, fields map[string]string) model.Outcome {
	credential := fields["api_key"]

	normalized := schema.Normalize(fields)
	req, validationErr := schema.Validate(normalized)
	if validationErr != "" {
		return model.Outcome{
			Image:  previous.Image,
			Error:  validationErr,
			Prompt: previous.Prompt,
		}
	}

	input := buildInput(req)

	result, err := s.provider.Generate(ctx, credential, input)
	if err != nil {
		var apiErr *provider.APIError
		if errors.As(err, &apiErr) {
			// provider 自己的业务错误，消息原样透出
			return model.Outcome{
				Image:  previous.Image,
				Error:  apiErr.Message,
				Prompt: previous.Prompt,
			}
		}
		logger.Errorf("生成图片失败: %v", err)
		return model.Outcome{
			Image:  previous.Image,
			Error:  genericErrorMessage,
			Prompt: previous.Prompt,
		}
	}

	// provider 正常返回但图片列表为空，按未知失败处理
	if len(result.Images) == 0 {
		logger.Warn("provider 返回了空的图片列表")
		return model.Outcome{
			Image:  previous.Image,
			Error:  genericErrorMessage,
			Prompt: previous.Prompt,
		}
	}

	return model.Outcome{
		Image:  result.Images[0].URL,
		Error:  "",
		Prompt: previous.Prompt,
	}
}

// buildInput 把校验后的请求转换成 provider 载荷，
// safety_tolerance 转成十进制字符串，provider 接口要求字符串枚举
func buildInput(req *model.GenerationRequest) *provider.Input {
	return &provider.Input{
		Prompt:              req.Prompt,
		Raw:                 req.Raw,
		Seed:                req.Seed,
		AspectRatio:         req.AspectRatio,
		ImagePrompt:         req.ImagePrompt,
		OutputFormat:        req.OutputFormat,
		SafetyTolerance:     strconv.Itoa(req.SafetyTolerance),
		ImagePromptStrength: req.ImagePromptStrength,
	}
}
