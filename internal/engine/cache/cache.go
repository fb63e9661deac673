// Package cache memoizes model analysis responses keyed by a content hash.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Store is the cache contract shared by the memory and redis backends.
// A backend failure is never surfaced to the caller as an error: Get
// reports a miss and Put is a no-op, so a broken cache degrades to
// uncached operation.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key string, value string, ttl time.Duration)
}

// Stats describes cache activity since process start.
type Stats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Key derives a deterministic cache key from the exact prompt text and
// every parameter that affects the model output. Parameters are folded
// in sorted order so that map iteration order cannot split the keyspace.
func Key(prompt string, params map[string]interface{}) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(prompt)
	for _, name := range names {
		sb.WriteString("|")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(fmt.Sprintf("%v", params[name]))
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return "analysis:" + hex.EncodeToString(sum[:])
}
