// Package prompt loads the extraction prompt and decodes model responses into
// partial records. It is shared by every extraction provider.
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Config holds the prompts and model parameters used by the extractors
type Config struct {
	RecordExtraction Spec `yaml:"record_extraction"`
}

// Spec is one prompt with its sampling parameters
type Spec struct {
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	System       string  `yaml:"system"`
	UserTemplate string  `yaml:"user_template"`
}

// Data is what the user template is rendered with
type Data struct {
	Text  string
	Today string
}

// LoadPrompts loads prompt configuration from YAML file
func LoadPrompts(promptsPath string) (*Config, error) {
	data, err := os.ReadFile(promptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var prompts Config
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	if prompts.RecordExtraction.UserTemplate == "" {
		return nil, fmt.Errorf("prompts file %s has no record_extraction.user_template", promptsPath)
	}

	return &prompts, nil
}

// RenderUser renders the user prompt for one extraction
func (s Spec) RenderUser(data Data) (string, error) {
	tmpl, err := template.New("prompt").Parse(s.UserTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
