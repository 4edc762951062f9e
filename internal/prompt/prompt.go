// Package prompt assembles the text sent to the backend.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// SystemPromptFile is the bundled resource holding the system prompt.
const SystemPromptFile = "resources/prompt.txt"

//go:embed resources/prompt.txt
var resources embed.FS

// Resources returns the bundled resource filesystem.
func Resources() fs.FS { return resources }

// ErrResourceMissing is returned when the system prompt resource is absent.
var ErrResourceMissing = errors.New("system prompt resource missing")

// LoadSystemPrompt reads the system prompt from fsys.
func LoadSystemPrompt(fsys fs.FS) (string, error) {
	data, err := fs.ReadFile(fsys, SystemPromptFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrResourceMissing, SystemPromptFile)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", SystemPromptFile, err)
	}
	return string(data), nil
}

// LoadCustomInstructions returns the contents of the optional override
// file. A missing file yields "".
func LoadCustomInstructions(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read custom instructions: %w", err)
	}
	return string(data), nil
}

// Assemble builds the user message from the request and its context.
func Assemble(userPrompt, systemInfo, customInstructions string) string {
	return userPrompt + "\n\nSystem info: " + systemInfo + "\n\nOther conditions:" + customInstructions
}
