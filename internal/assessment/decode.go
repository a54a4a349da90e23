package assessment

import (
	"bytes"
	"encoding/json"
	"puspa_backend/pkg/logger"
	"puspa_backend/pkg/monitoring"
	"strings"

	"go.uber.org/zap"
)

// Decode 解析可能是结构化 JSON、也可能是被编码成字符串的 JSON 片段。
// 空值直接返回 fallback；解析失败记录告警并返回 fallback，不会报错。
func Decode[T any](raw json.RawMessage, fallback T, field string) T {
	data, ok := unquote(raw)
	if !ok {
		return fallback
	}

	var out T
	err := json.Unmarshal(data, &out)
	if err == nil {
		return out
	}

	logger.Log.Warn("Malformed schema fragment, using fallback",
		zap.String("field", field),
		zap.Error(err))
	monitoring.SchemaDecodeFallbacks.WithLabelValues(field).Inc()
	return fallback
}

// Malformed 返回去掉字符串编码后仍不是合法 JSON 的片段文本
func Malformed(raw json.RawMessage) (string, bool) {
	data, ok := unquote(raw)
	if !ok || json.Valid(data) {
		return "", false
	}
	return string(data), true
}

// unquote 去掉一层字符串编码；null/空串视为缺省
func unquote(raw json.RawMessage) ([]byte, bool) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, false
	}
	if data[0] != '"' {
		return data, true
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return data, true
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	return []byte(s), true
}

// scalarText 读取既可能是数字也可能是字符串的标识字段
func scalarText(raw json.RawMessage) string {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ""
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return strings.Trim(string(data), `"`)
	}
	return stringify(v)
}

// NormalizeOptions 选项可能是字符串，也可能是 {value,label} 对象
func NormalizeOptions(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, normalizeOption(item))
	}
	return out
}

func normalizeOption(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]any:
		if val, ok := v["value"]; ok && val != nil {
			return stringify(val)
		}
		if label, ok := v["label"]; ok && label != nil {
			return stringify(label)
		}
		return stringify(v)
	default:
		return stringify(v)
	}
}
