// ABOUTME: OpenAI-compatible client for embeddings, image captions and grounded answers
// ABOUTME: Works against OpenAI or any compatible endpoint (e.g. Ollama /v1) via BaseURL
package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/harper/urban-lens/internal/config"
	"github.com/harper/urban-lens/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for answers
	DefaultChatModel = "gpt-4o-mini"
	// DefaultVisionModel is the default model for image captions
	DefaultVisionModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3

	captionTemperature = 0.3
	captionMaxTokens   = 500
	answerTemperature  = 0.3
	answerMaxTokens    = 500
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	VisionModel    string
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		VisionModel:    DefaultVisionModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     time.Second * 2,
	}
}

// ConfigFrom maps application configuration onto client configuration
func ConfigFrom(cfg *config.Config) *ClientConfig {
	return &ClientConfig{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.BaseURL,
		ChatModel:      cfg.ChatModel,
		VisionModel:    cfg.VisionModel,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	visionModel    string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	backoff        util.Backoff
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration.
// An API key is required unless a custom BaseURL is set (local servers ignore it).
func NewOpenAIClientWithConfig(cfg *ClientConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(clientCfg),
		chatModel:      cfg.ChatModel,
		visionModel:    cfg.VisionModel,
		embeddingModel: cfg.EmbeddingModel,
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		backoff:        util.NewBackoff(cfg.RetryDelay),
	}, nil
}

// withRetry runs call up to maxRetries+1 times with exponential backoff.
// Each attempt gets its own timeout derived from ctx.
func withRetry[T any](ctx context.Context, c *OpenAIClient, op string, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.backoff.Wait(ctx, attempt); err != nil {
			return zero, fmt.Errorf("%s: %w", op, err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		result, err := call(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
	}

	return zero, fmt.Errorf("failed to %s after %d attempts: %w", op, c.maxRetries+1, lastErr)
}

// Embed generates an embedding vector for text
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float64, error) {
	return withRetry(ctx, c, "generate embedding", func(ctx context.Context) ([]float64, error) {
		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		if err != nil {
			return nil, err
		}

		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}

		// Convert []float32 to []float64
		embedding32 := resp.Data[0].Embedding
		embedding64 := make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding64[i] = float64(v)
		}
		return embedding64, nil
	})
}

// Complete sends a system persona and a user prompt to the chat model and returns the reply text
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return withRetry(ctx, c, "generate answer", func(ctx context.Context) (string, error) {
		return c.chat(ctx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			Temperature: answerTemperature,
			MaxTokens:   answerMaxTokens,
		})
	})
}

// DescribeImage sends the image at imagePath with an instruction to the vision model
// and returns the raw reply text
func (c *OpenAIClient) DescribeImage(ctx context.Context, instruction, imagePath string) (string, error) {
	dataURI, err := imageDataURI(imagePath)
	if err != nil {
		return "", err
	}

	return withRetry(ctx, c, "describe image", func(ctx context.Context) (string, error) {
		return c.chat(ctx, openai.ChatCompletionRequest{
			Model: c.visionModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: instruction,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    dataURI,
								Detail: openai.ImageURLDetailAuto,
							},
						},
					},
				},
			},
			Temperature: captionTemperature,
			MaxTokens:   captionMaxTokens,
		})
	})
}

// Warm sends one throwaway prompt to the vision model so its load time
// is not charged to the first real image
func (c *OpenAIClient) Warm(ctx context.Context) error {
	_, err := withRetry(ctx, c, "warm vision model", func(ctx context.Context) (string, error) {
		return c.chat(ctx, openai.ChatCompletionRequest{
			Model: c.visionModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: "hi"},
			},
			Temperature: captionTemperature,
			MaxTokens:   captionMaxTokens,
		})
	})
	return err
}

func (c *OpenAIClient) chat(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// imageDataURI reads an image file and encodes it as a base64 data URI
func imageDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image %s: %w", path, err)
	}
	mime := http.DetectContentType(data)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}
