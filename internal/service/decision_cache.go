package service

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/user/llm-router-go/internal/models"
	"go.uber.org/zap"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeText standardizes a prompt to improve cache hit rate:
// lowercase, collapsed whitespace, trimmed trailing punctuation.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	text = strings.TrimRight(text, ".!?")
	return text
}

// DecisionCacheKey hashes (org, router, normalized prompt) into a cache key.
// The router id is part of the key so edits to one router never surface
// another router's decisions.
func DecisionCacheKey(orgID, routerID, prompt string) string {
	normalized := NormalizeText(prompt)
	hash := md5.Sum([]byte(orgID + "|" + routerID + "|" + normalized))
	return hex.EncodeToString(hash[:])
}

type decisionCacheEntry struct {
	classification models.Classification
	timestamp      time.Time
}

// DecisionCache is an in-memory TTL cache of classification outcomes. Only
// the winning (label, score) pair is cached; the label is re-resolved to a
// category and model on every request, so model edits take effect
// immediately. Single-model and sentence-matching decisions are never
// cached.
type DecisionCache struct {
	cache   map[string]*decisionCacheEntry
	mu      sync.RWMutex
	maxSize int
	ttl     time.Duration
	logger  *zap.Logger
}

// NewDecisionCache creates a DecisionCache. A non-positive ttl disables
// caching entirely.
func NewDecisionCache(maxSize int, ttl time.Duration, logger *zap.Logger) *DecisionCache {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &DecisionCache{
		cache:   make(map[string]*decisionCacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
		logger:  logger,
	}
}

// Enabled reports whether the cache stores anything at all.
func (dc *DecisionCache) Enabled() bool {
	return dc != nil && dc.ttl > 0
}

// Get retrieves a cached classification if present and unexpired.
func (dc *DecisionCache) Get(key string) (models.Classification, bool) {
	if !dc.Enabled() {
		return models.Classification{}, false
	}

	dc.mu.RLock()
	defer dc.mu.RUnlock()

	entry, ok := dc.cache[key]
	if !ok {
		return models.Classification{}, false
	}

	age := time.Since(entry.timestamp)
	if age > dc.ttl {
		// Expired, cleaned up lazily on the next Set eviction.
		return models.Classification{}, false
	}

	dc.logger.Debug("decision cache hit",
		zap.String("key", key[:8]),
		zap.String("label", entry.classification.Label),
		zap.Duration("age", age))
	return entry.classification, true
}

// Set stores a classification outcome.
func (dc *DecisionCache) Set(key string, c models.Classification) {
	if !dc.Enabled() {
		return
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if _, exists := dc.cache[key]; !exists && len(dc.cache) >= dc.maxSize {
		dc.evictOldest()
	}
	dc.cache[key] = &decisionCacheEntry{
		classification: c,
		timestamp:      time.Now(),
	}
}

// Clear removes all entries.
func (dc *DecisionCache) Clear() {
	if dc == nil {
		return
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.cache = make(map[string]*decisionCacheEntry)
}

// Size returns the current number of entries.
func (dc *DecisionCache) Size() int {
	if dc == nil {
		return 0
	}
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return len(dc.cache)
}

// evictOldest removes the oldest entry. Caller holds the lock.
func (dc *DecisionCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	first := true
	for k, v := range dc.cache {
		if first || v.timestamp.Before(oldestTime) {
			oldestKey = k
			oldestTime = v.timestamp
			first = false
		}
	}
	if !first {
		delete(dc.cache, oldestKey)
	}
}
