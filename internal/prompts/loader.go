// Package prompts holds the LLM prompt templates, stored as JSON files and
// embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// The embedded set is immutable, so every file is parsed exactly once.
var (
	loadOnce sync.Once
	files    map[string]map[string]string
	loadErr  error
)

func load() {
	files = make(map[string]map[string]string)

	entries, err := promptFiles.ReadDir(".")
	if err != nil {
		loadErr = fmt.Errorf("failed to list prompt files: %w", err)
		return
	}

	for _, entry := range entries {
		data, err := promptFiles.ReadFile(entry.Name())
		if err != nil {
			loadErr = fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
			return
		}

		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			loadErr = fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
			return
		}
		files[entry.Name()] = prompts
	}
}

// Get retrieves a prompt template by filename and key. The filename carries
// no path (e.g. "scoring.json").
func Get(filename, key string) (string, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return "", loadErr
	}

	prompts, exists := files[filename]
	if !exists {
		return "", fmt.Errorf("prompt file %s not found", filename)
	}
	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet retrieves a prompt template, panicking when it does not exist.
// The templates ship inside the binary, so a miss is a build defect.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces placeholders in the form {{.Key}} with values from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}
