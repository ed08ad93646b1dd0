// ABOUTME: Caption cache keyed by image path over a JSON key-value backend
// ABOUTME: Lets repeated caption passes skip images the vision model already described
package storage

import (
	"fmt"

	"github.com/harper/urban-lens/internal/charm"
	"github.com/harper/urban-lens/internal/models"
)

// KV is the subset of the charm client the cache needs
type KV interface {
	GetJSON(key string, dest interface{}) error
	SetJSON(key string, value interface{}) error
	ListKeys(prefix string) ([]string, error)
}

// CaptionCache stores parsed captions per image path
type CaptionCache struct {
	kv KV
}

// NewCaptionCache creates a cache on top of the given backend
func NewCaptionCache(kv KV) *CaptionCache {
	return &CaptionCache{kv: kv}
}

// Lookup returns the cached caption for imagePath, if any.
// Backend read errors count as a miss.
func (c *CaptionCache) Lookup(imagePath string) (models.Caption, bool) {
	var cached models.Caption
	if err := c.kv.GetJSON(charm.CaptionKey(imagePath), &cached); err != nil {
		return models.Caption{}, false
	}
	if cached.Caption == "" {
		return models.Caption{}, false
	}
	return cached, true
}

// Store saves a caption for imagePath
func (c *CaptionCache) Store(imagePath string, caption models.Caption) error {
	if err := c.kv.SetJSON(charm.CaptionKey(imagePath), caption); err != nil {
		return fmt.Errorf("caching caption for %s: %w", imagePath, err)
	}
	return nil
}

// Count returns the number of cached captions
func (c *CaptionCache) Count() (int, error) {
	keys, err := c.kv.ListKeys(charm.CaptionPrefix)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
