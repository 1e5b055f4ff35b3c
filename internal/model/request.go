package model

// ConfirmKeyRequest 确认保存 API Key（回车确认由前端触发，空值由服务端拒绝）
type ConfirmKeyRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// UpdateFieldRequest 更新单个镜像字段，name 必须是四个受控字段之一
type UpdateFieldRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}
