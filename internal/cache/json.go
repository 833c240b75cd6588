package cache

import (
	"context"
	"encoding/json"
)

// GetJSON decodes a cached value into dst. A value that fails to decode is evicted
// and reported as a miss.
func GetJSON(ctx context.Context, s Store, key string, dst any) bool {
	if s == nil {
		return false
	}
	b, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.Delete(ctx, key)
		return false
	}
	return true
}

func SetJSON(ctx context.Context, s Store, key string, v any) {
	if s == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.Set(ctx, key, b)
}
