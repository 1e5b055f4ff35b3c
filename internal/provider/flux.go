package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"fluxgen-backend/internal/config"
	"fluxgen-backend/internal/utils"
)

// FluxClient 调用 fal.ai 托管的 FLUX 模型，同步接口，一次请求一次响应
type FluxClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewFluxClient(cfg config.FluxConfig) *FluxClient {
	return &FluxClient{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: utils.NewHTTPClient(cfg.Timeout),
	}
}

// fal 的错误响应体，detail 可能是字符串也可能是结构数组
type fluxErrorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

func (c *FluxClient) Generate(ctx context.Context, credential string, input *Input) (*Result, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal flux input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build flux request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call flux api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read flux response: %w", err)
	}

	// 非 2xx 都是 provider 自己拒绝的请求，消息要原样带回去
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    parseFluxError(respBody, resp.StatusCode),
		}
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode flux response: %w", err)
	}

	return &result, nil
}

// parseFluxError 尽量从响应体里提取人类可读的错误消息
func parseFluxError(body []byte, statusCode int) string {
	var errBody fluxErrorBody
	if err := json.Unmarshal(body, &errBody); err == nil {
		if errBody.Message != "" {
			return errBody.Message
		}
		if len(errBody.Detail) > 0 {
			var detail string
			if err := json.Unmarshal(errBody.Detail, &detail); err == nil && detail != "" {
				return detail
			}
			// detail 是校验错误数组时，取第一条的 msg
			var details []struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(errBody.Detail, &details); err == nil && len(details) > 0 && details[0].Msg != "" {
				return details[0].Msg
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", statusCode)
}
