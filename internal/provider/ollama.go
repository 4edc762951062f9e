package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/joss/cmdgen/pkg/llm"
)

// Ollama talks to a local Ollama server through /api/chat.
type Ollama struct {
	host        string
	model       string
	temperature float64
	maxTokens   int
	extra       map[string]any
	client      HTTPClient
}

// NewOllama creates a local server adapter. A host without a scheme is
// treated as http.
func NewOllama(host, model string, opts ...Option) *Ollama {
	o := options{temperature: defaultTemperature, maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&o)
	}
	return &Ollama{
		host:        normalizeHost(host),
		model:       model,
		temperature: o.temperature,
		maxTokens:   o.maxTokens,
		extra:       o.extra,
		client:      o.httpClient(),
	}
}

func normalizeHost(host string) string {
	host = strings.TrimRight(host, "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}

func (o *Ollama) ID() string   { return "ollama" }
func (o *Ollama) Host() string { return o.host }

type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []llm.Message  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options"`
}

type ollamaResponse struct {
	Message *struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Complete sends one non-streaming chat request.
func (o *Ollama) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	opts := make(map[string]any, len(o.extra)+2)
	for k, v := range o.extra {
		opts[k] = v
	}
	opts["temperature"] = o.temperature
	opts["num_predict"] = o.maxTokens

	body, err := json.Marshal(ollamaRequest{
		Model:    o.model,
		Messages: llm.OneShot(systemPrompt, userPrompt),
		Stream:   false,
		Options:  opts,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := o.host + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	raw, err := do(o.client, httpReq, o.host)
	if err != nil {
		return "", err
	}

	var resp ollamaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &llm.MalformedResponseError{Reason: "invalid JSON: " + err.Error(), Raw: string(raw)}
	}
	if resp.Message == nil || resp.Message.Content == nil {
		return "", &llm.MalformedResponseError{Reason: "no message content", Raw: string(raw)}
	}

	return strings.TrimSpace(*resp.Message.Content), nil
}

var _ llm.Completer = (*Ollama)(nil)
