// Package config builds the immutable agent configuration once at startup.
// Components receive an AgentConfig; none of them read the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
)

// Provider selects the backend variant.
type Provider int

const (
	HostedAPI Provider = iota
	LocalServer
)

func (p Provider) String() string {
	switch p {
	case LocalServer:
		return "local-server"
	case HostedAPI:
		return "hosted-api"
	}
	return "unknown"
}

// Environment variable names.
const (
	EnvModelName      = "MODEL_NAME"
	EnvAPIBase        = "API_BASE"
	EnvAPIKey         = "API_KEY"
	EnvExtraBody      = "EXTRA_BODY"
	EnvLocalModelName = "OLLAMA_MODEL_NAME"
	EnvLocalHost      = "OLLAMA_HOST"
	EnvTemperature    = "CMDGEN_TEMPERATURE"
	EnvMaxTokens      = "CMDGEN_MAX_TOKENS"
	EnvLog            = "CMDGEN_LOG"
)

const (
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 500
	DefaultLocalHost   = "http://localhost:11434"
)

// Flags carries the CLI overrides. Empty strings mean "use the environment".
type Flags struct {
	Model        string
	Host         string
	LocalBackend bool
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// AgentConfig is the backend configuration. It is never mutated after Load.
type AgentConfig struct {
	provider    Provider
	model       string
	host        string
	apiKey      string
	extraParams map[string]any
	temperature float64
	maxTokens   int
}

func (c AgentConfig) Provider() Provider   { return c.provider }
func (c AgentConfig) Model() string        { return c.model }
func (c AgentConfig) Host() string         { return c.host }
func (c AgentConfig) APIKey() string       { return c.apiKey }
func (c AgentConfig) Temperature() float64 { return c.temperature }
func (c AgentConfig) MaxTokens() int       { return c.maxTokens }
func (c AgentConfig) ExtraParams() map[string]any {
	return maps.Clone(c.extraParams)
}

// MissingError names the first required variable that had no value.
type MissingError struct {
	Var string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s is not set", e.Var)
}

// InvalidError reports a variable whose value could not be used.
type InvalidError struct {
	Var string
	Err error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %v", e.Var, e.Err)
}

func (e *InvalidError) Unwrap() error { return e.Err }

// Load builds the AgentConfig from flags and the environment. Flags win
// over environment values; environment values win over defaults.
func Load(flags Flags, lookup LookupFunc) (AgentConfig, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	cfg := AgentConfig{
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}

	if flags.LocalBackend {
		cfg.provider = LocalServer
		cfg.model = firstNonEmpty(flags.Model, get(EnvLocalModelName))
		if cfg.model == "" {
			return AgentConfig{}, &MissingError{Var: EnvLocalModelName}
		}
		cfg.host = firstNonEmpty(flags.Host, get(EnvLocalHost), DefaultLocalHost)
	} else {
		cfg.provider = HostedAPI
		cfg.model = firstNonEmpty(flags.Model, get(EnvModelName))
		if cfg.model == "" {
			return AgentConfig{}, &MissingError{Var: EnvModelName}
		}
		cfg.host = get(EnvAPIBase)
		if cfg.host == "" {
			return AgentConfig{}, &MissingError{Var: EnvAPIBase}
		}
		cfg.apiKey = get(EnvAPIKey)

		extra, err := parseExtraBody(get(EnvExtraBody))
		if err != nil {
			return AgentConfig{}, &InvalidError{Var: EnvExtraBody, Err: err}
		}
		cfg.extraParams = extra
	}

	if v := get(EnvTemperature); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return AgentConfig{}, &InvalidError{Var: EnvTemperature, Err: err}
		}
		if t < 0 || t > 2 {
			return AgentConfig{}, &InvalidError{Var: EnvTemperature, Err: fmt.Errorf("%v is outside [0, 2]", t)}
		}
		cfg.temperature = t
	}

	if v := get(EnvMaxTokens); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return AgentConfig{}, &InvalidError{Var: EnvMaxTokens, Err: err}
		}
		if n <= 0 {
			return AgentConfig{}, &InvalidError{Var: EnvMaxTokens, Err: fmt.Errorf("%d must be positive", n)}
		}
		cfg.maxTokens = n
	}

	return cfg, nil
}

// parseExtraBody decodes the EXTRA_BODY blob. Empty means no extras.
func parseExtraBody(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var extra map[string]any
	if err := json.Unmarshal([]byte(raw), &extra); err != nil {
		return nil, fmt.Errorf("expected a JSON object: %w", err)
	}
	if extra == nil {
		return nil, errors.New("expected a JSON object, got null")
	}
	return extra, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// LogEnabled reports whether CMDGEN_LOG asks for debug logs.
func LogEnabled(lookup LookupFunc) bool {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, _ := lookup(EnvLog)
	return v == "debug" || v == "1"
}

// Paths holds the standard cmdgen locations.
type Paths struct {
	// Home is the cmdgen home directory (~/.cmdgen)
	Home string

	// EnvFile is the user-wide .env file (~/.cmdgen/.env)
	EnvFile string

	// LocalEnvFile is the .env in the working directory
	LocalEnvFile string

	// CustomPrompt is the optional custom instructions file in the working directory
	CustomPrompt string
}

// GetPaths resolves the standard paths. A missing home directory falls back to ".".
func GetPaths() Paths {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cmdgenHome := filepath.Join(home, ".cmdgen")

	return Paths{
		Home:         cmdgenHome,
		EnvFile:      filepath.Join(cmdgenHome, ".env"),
		LocalEnvFile: ".env",
		CustomPrompt: "custom_prompt.txt",
	}
}
