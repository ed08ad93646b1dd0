// ABOUTME: Deterministic stand-ins for the embedding, vision and answer models
// ABOUTME: Shared by the core package tests
package core

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/harper/urban-lens/internal/models"
)

// keywordEmbedder counts vocabulary stems in lowercase text. The last
// dimension is a constant so no vector has zero norm.
type keywordEmbedder struct {
	vocab []string
	fail  map[string]bool
	calls []string
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{
		vocab: []string{"flood", "sidewalk", "pedestrian", "trash", "road"},
		fail:  map[string]bool{},
	}
}

func (e *keywordEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.calls = append(e.calls, text)
	for marker := range e.fail {
		if strings.Contains(text, marker) {
			return nil, errors.New("embedding backend unavailable")
		}
	}
	lower := strings.ToLower(text)
	vec := make([]float64, len(e.vocab)+1)
	for i, word := range e.vocab {
		vec[i] = float64(strings.Count(lower, word))
	}
	vec[len(e.vocab)] = 1
	return vec, nil
}

type stubVision struct {
	mu        sync.Mutex
	replies   map[string]string
	errs      map[string]error
	warmCalls int
	warmErr   error
	described []string
}

func newStubVision() *stubVision {
	return &stubVision{replies: map[string]string{}, errs: map[string]error{}}
}

func (v *stubVision) DescribeImage(ctx context.Context, instruction, imagePath string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.described = append(v.described, imagePath)
	if err, ok := v.errs[imagePath]; ok {
		return "", err
	}
	return v.replies[imagePath], nil
}

func (v *stubVision) Warm(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.warmCalls++
	return v.warmErr
}

type stubAnswerer struct {
	reply        string
	err          error
	systemPrompt string
	userPrompt   string
	calls        int
}

func (a *stubAnswerer) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	a.calls++
	a.systemPrompt = systemPrompt
	a.userPrompt = userPrompt
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

type memCache struct {
	entries map[string]models.Caption
	stored  []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]models.Caption{}}
}

func (c *memCache) Lookup(imagePath string) (models.Caption, bool) {
	caption, ok := c.entries[imagePath]
	return caption, ok
}

func (c *memCache) Store(imagePath string, caption models.Caption) error {
	c.entries[imagePath] = caption
	c.stored = append(c.stored, imagePath)
	return nil
}
