package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/joss/cmdgen/pkg/llm"
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint
// (OpenAI, LiteLLM proxies, vLLM, OpenRouter...).
type OpenAI struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	extra       map[string]any
	client      HTTPClient
}

// NewOpenAI creates a hosted API adapter. baseURL is normalized to end with
// /chat/completions.
func NewOpenAI(baseURL, apiKey, model string, opts ...Option) *OpenAI {
	o := options{temperature: defaultTemperature, maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&o)
	}
	return &OpenAI{
		apiKey:      apiKey,
		baseURL:     chatCompletionsURL(baseURL),
		model:       model,
		temperature: o.temperature,
		maxTokens:   o.maxTokens,
		extra:       o.extra,
		client:      o.httpClient(),
	}
}

func chatCompletionsURL(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}
	// If baseURL ends with /v1, append /chat/completions
	if strings.HasSuffix(baseURL, "/v1") {
		return baseURL + "/chat/completions"
	}
	return baseURL + "/v1/chat/completions"
}

func (o *OpenAI) ID() string   { return "openai" }
func (o *OpenAI) Host() string { return o.baseURL }

type openaiRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Stream      bool          `json:"stream"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type openaiResponse struct {
	Choices []struct {
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends one non-streaming chat completion request.
func (o *OpenAI) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := mergeBody(openaiRequest{
		Model:       o.model,
		Messages:    llm.OneShot(systemPrompt, userPrompt),
		Stream:      false,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}, o.extra)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	raw, err := do(o.client, httpReq, o.baseURL)
	if err != nil {
		return "", err
	}

	var resp openaiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &llm.MalformedResponseError{Reason: "invalid JSON: " + err.Error(), Raw: string(raw)}
	}
	if len(resp.Choices) == 0 {
		return "", &llm.MalformedResponseError{Reason: "no choices", Raw: string(raw)}
	}
	msg := resp.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", &llm.MalformedResponseError{Reason: "first choice has no message content", Raw: string(raw)}
	}

	return strings.TrimSpace(*msg.Content), nil
}

// do sends the request and returns the body of a 2xx reply.
func do(client HTTPClient, req *http.Request, host string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, &llm.UnavailableError{Host: host, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.UnavailableError{Host: host, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &llm.UnavailableError{
			Host:       host,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API error: %s", strings.TrimSpace(string(raw))),
		}
	}
	return raw, nil
}

// mergeBody marshals the core request and adds extra params as top-level
// fields. Core fields are never overridden.
func mergeBody(core any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(core)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := body[k]; ok {
			continue
		}
		body[k] = v
	}
	return json.Marshal(body)
}

var _ llm.Completer = (*OpenAI)(nil)
