package service

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// ContentCache is the slice of the cache repository the content services use
// for public payload caching and write invalidation.
type ContentCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const statsCacheKey = "cms:stats"

// listCacheKey builds a deterministic cache key from filter values. Parts are
// positional, so callers pass every filter field in a fixed order and equal
// filters always map to the same key.
func listCacheKey(resource string, parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 12)
	builder.WriteString("cms:")
	builder.WriteString(resource)
	builder.WriteString(":list")
	for _, part := range parts {
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

func boolPart(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func stringPart(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeSlug lowercases and trims a slug; slugs are stored canonical.
func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
