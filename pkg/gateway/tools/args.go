package tools

import (
	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
)

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", apperror.Validation(key, "is required")
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", apperror.Validation(key, "must be a non-empty string")
	}
	return s, nil
}

func optionalStringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func optionalIntArg(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}

func optionalObjectArg(args map[string]any, key string) map[string]any {
	v, _ := args[key].(map[string]any)
	if v == nil {
		return map[string]any{}
	}
	return v
}

func optionalBoolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}
