package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
)

// Ensure the decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)
	_ driven.LLMService       = (*RateLimitedLLM)(nil)
)

// RateLimitConfig holds token-bucket parameters for a provider.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// Default limits, conservative enough for hosted provider free tiers.
var (
	DefaultEmbeddingRateLimit = RateLimitConfig{RequestsPerSecond: 10.0, BurstSize: 20}
	DefaultLLMRateLimit       = RateLimitConfig{RequestsPerSecond: 2.0, BurstSize: 4}
)

// RateLimitedEmbedding wraps an EmbeddingService with a token bucket so
// batch ingestion cannot exhaust the provider's quota.
type RateLimitedEmbedding struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimitedEmbedding wraps svc with the given limits.
func NewRateLimitedEmbedding(svc driven.EmbeddingService, cfg RateLimitConfig) *RateLimitedEmbedding {
	if cfg.RequestsPerSecond <= 0 {
		cfg = DefaultEmbeddingRateLimit
	}
	return &RateLimitedEmbedding{
		inner:   svc,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Embed waits for a token, then delegates.
func (s *RateLimitedEmbedding) Embed(ctx context.Context, text string, mode driven.EmbedMode) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}
	return s.inner.Embed(ctx, text, mode)
}

// EmbedBatch waits for one token per text, then delegates. The batch is
// one upstream request for providers with a batch API, but reserving per
// text keeps the effective throughput comparable across providers.
func (s *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.WaitN(ctx, max(len(texts), 1)); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}
	return s.inner.EmbedBatch(ctx, texts)
}

func (s *RateLimitedEmbedding) Dimensions() int              { return s.inner.Dimensions() }
func (s *RateLimitedEmbedding) ModelName() string            { return s.inner.ModelName() }
func (s *RateLimitedEmbedding) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }
func (s *RateLimitedEmbedding) Close() error                 { return s.inner.Close() }

// RateLimitedLLM wraps an LLMService with a token bucket.
type RateLimitedLLM struct {
	inner   driven.LLMService
	limiter *rate.Limiter
}

// NewRateLimitedLLM wraps svc with the given limits.
func NewRateLimitedLLM(svc driven.LLMService, cfg RateLimitConfig) *RateLimitedLLM {
	if cfg.RequestsPerSecond <= 0 {
		cfg = DefaultLLMRateLimit
	}
	return &RateLimitedLLM{
		inner:   svc,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Generate waits for a token, then delegates.
func (s *RateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limit: %w", err)
	}
	return s.inner.Generate(ctx, prompt, opts)
}

// Chat waits for a token, then delegates.
func (s *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limit: %w", err)
	}
	return s.inner.Chat(ctx, messages, opts)
}

func (s *RateLimitedLLM) ModelName() string              { return s.inner.ModelName() }
func (s *RateLimitedLLM) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }
func (s *RateLimitedLLM) Close() error                   { return s.inner.Close() }
