package schema

import "strconv"

// Normalize 把表单传输层的纯文本字段转换成校验需要的类型。
// 只处理已知字段：seed、safety_tolerance、image_prompt_strength 是数字，
// raw 只有字面量 "on" 或 "true" 才算 true。无法解析的值原样传递，交给校验拒绝。
func Normalize(fields map[string]string) map[string]interface{} {
	normalized := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		normalized[k] = v
	}

	if v, ok := fields["seed"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			normalized["seed"] = n
		}
	}

	if v, ok := fields["safety_tolerance"]; ok {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			normalized["safety_tolerance"] = n
		}
	}

	if v, ok := fields["image_prompt_strength"]; ok {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			normalized["image_prompt_strength"] = n
		}
	}

	// checkbox 选中时提交 "on"，受控组件提交 "true"/"false"，其余一律按 false 处理
	v := fields["raw"]
	normalized["raw"] = v == "on" || v == "true"

	return normalized
}
