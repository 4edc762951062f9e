// Package provider implements the backend adapters and picks one from config.
package provider

import (
	"fmt"
	"net/http"

	"github.com/joss/cmdgen/internal/config"
	"github.com/joss/cmdgen/pkg/llm"
)

const (
	defaultTemperature = config.DefaultTemperature
	defaultMaxTokens   = config.DefaultMaxTokens
)

type options struct {
	client      HTTPClient
	temperature float64
	maxTokens   int
	extra       map[string]any
}

func (o options) httpClient() HTTPClient {
	if o.client == nil {
		return &http.Client{}
	}
	return o.client
}

// Option modifies adapter construction.
type Option func(*options)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) { o.client = client }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = t }
}

// WithMaxTokens sets the completion token limit.
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

// WithExtraParams passes provider-specific fields through unvalidated.
func WithExtraParams(extra map[string]any) Option {
	return func(o *options) { o.extra = extra }
}

// Select builds the adapter for the configured provider variant.
func Select(cfg config.AgentConfig, opts ...Option) (llm.Completer, error) {
	all := append([]Option{
		WithTemperature(cfg.Temperature()),
		WithMaxTokens(cfg.MaxTokens()),
		WithExtraParams(cfg.ExtraParams()),
	}, opts...)

	switch cfg.Provider() {
	case config.LocalServer:
		return NewOllama(cfg.Host(), cfg.Model(), all...), nil
	case config.HostedAPI:
		return NewOpenAI(cfg.Host(), cfg.APIKey(), cfg.Model(), all...), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider())
	}
}
