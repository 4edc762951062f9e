// Package llm defines the provider-agnostic completion contract.
package llm

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// Completer is the interface all backend adapters implement.
type Completer interface {
	// ID identifies the backend ("openai", "ollama").
	ID() string

	// Host is the base URL or host the adapter talks to.
	Host() string

	// Complete sends a single system+user request and returns the trimmed reply.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Role of a message in a one-shot request
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry of the request sent to a backend.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// OneShot builds the two-message sequence for a request. No history is kept.
func OneShot(systemPrompt, userPrompt string) []Message {
	return []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: userPrompt},
	}
}

// UnavailableError reports a transport failure or a non-2xx reply.
type UnavailableError struct {
	Host       string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("could not connect to model at %s: status %d: %v", e.Host, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("could not connect to model at %s: %v", e.Host, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// MalformedResponseError reports a reply with an unexpected shape.
// Raw holds the body as received, for diagnostics.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("unexpected response format (%s): %s", e.Reason, truncate(e.Raw, 512))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := max - 3
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
