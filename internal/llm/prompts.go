package llm

import (
	_ "embed"
	"os"
	"strings"
)

//go:embed prompts/update_v1.txt
var updatePromptV1 string

// UpdatePrompt returns the system prompt for update analysis. A non-empty
// path overrides the embedded default, read once at startup by the caller.
func UpdatePrompt(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return updatePromptV1, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
