package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fluxgen-backend/internal/config"
	"fluxgen-backend/internal/utils"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider 把生成请求适配到 OpenAI 兼容的 images 接口上，
// 作为 FLUX 之外的备选 provider。raw 模式和 image_prompt 该接口不支持，会被忽略。
type OpenAIProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOpenAIProvider(cfg config.OpenAIConfig) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: utils.NewHTTPClient(cfg.Timeout),
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, credential string, input *Input) (*Result, error) {
	// 凭证按调用注入，每次请求构造独立 client，不共享全局配置
	clientConfig := openai.DefaultConfig(credential)
	if p.baseURL != "" {
		clientConfig.BaseURL = p.baseURL
	}
	clientConfig.HTTPClient = p.httpClient
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateImage(ctx, openai.ImageRequest{
		Model:          p.model,
		Prompt:         input.Prompt,
		N:              1,
		Size:           sizeForAspectRatio(input.AspectRatio),
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &APIError{
				StatusCode: apiErr.HTTPStatusCode,
				Message:    apiErr.Message,
			}
		}
		return nil, fmt.Errorf("call openai images api: %w", err)
	}

	result := &Result{Prompt: input.Prompt}
	for _, d := range resp.Data {
		result.Images = append(result.Images, Image{URL: d.URL})
	}

	return result, nil
}

// sizeForAspectRatio 该接口只有固定尺寸档位，按宽高比就近映射
func sizeForAspectRatio(ratio string) string {
	switch ratio {
	case "21:9", "16:9", "3:2", "4:3", "5:4":
		return openai.CreateImageSize1792x1024
	case "4:5", "3:4", "2:3", "9:16", "9:21":
		return openai.CreateImageSize1024x1792
	default:
		return openai.CreateImageSize1024x1024
	}
}
