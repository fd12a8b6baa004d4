package cache

import (
	"fmt"
	"strings"
)

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	if prefix == "" {
		return id
	}
	return fmt.Sprintf("%s:%s", prefix, id)
}

// GenerateKeyWithParams creates a cache key with multiple parameters.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, prefix)
	for _, param := range params {
		parts = append(parts, fmt.Sprint(param))
	}
	return strings.Join(parts, ":")
}
