// ABOUTME: Caption generation for street images through a vision-language model
// ABOUTME: Warms the model once per process and reports failures per image
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const captionInstruction = `You are an expert image captioning model focused on urban safety, sanitation, and infrastructure.
Describe this image by providing:
1. A detailed caption describing what is visible and relevant to urban conditions.
2. A list of relevant tags highlighting key features, objects, or issues (e.g., "flooding", "trash", "pedestrian lane", "damaged road", "congested lanes", "risk of flooding", "accident prone").

Return only valid JSON in this format:
{
"caption": "<caption here>",
"tags": ["tag1", "tag2", ...]
}

Do not include extra explanations or text. Focus on relevant visual cues.`

// Captioner produces raw caption text for image files
type Captioner struct {
	model  VisionModel
	log    zerolog.Logger
	mu     sync.Mutex
	warmed bool
}

// NewCaptioner creates a captioner over the given vision model
func NewCaptioner(model VisionModel, lg zerolog.Logger) *Captioner {
	return &Captioner{
		model: model,
		log:   lg,
	}
}

// Warm runs one throwaway inference so model load time is not charged to the
// first image. Only the first successful call reaches the model.
func (c *Captioner) Warm(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.warmed {
		return nil
	}
	if err := c.model.Warm(ctx); err != nil {
		return &ModelInvocationError{Op: "warm vision model", Err: err}
	}
	c.warmed = true
	c.log.Debug().Msg("vision model warmed")
	return nil
}

// Generate returns the vision model's raw reply for the image at imagePath
func (c *Captioner) Generate(ctx context.Context, imagePath string) (string, error) {
	if _, err := os.Stat(imagePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &NotFoundError{Path: imagePath}
		}
		return "", fmt.Errorf("checking image %s: %w", imagePath, err)
	}

	raw, err := c.model.DescribeImage(ctx, captionInstruction, imagePath)
	if err != nil {
		return "", &ModelInvocationError{Op: "describe " + imagePath, Err: err}
	}
	return raw, nil
}
