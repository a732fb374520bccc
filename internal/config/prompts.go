package config

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"sigs.k8s.io/yaml"
)

const (
	ConversationTypeInterview       = "Interview"
	ConversationTypeBusinessMeeting = "Business Meeting"
)

var defaultPromptTemplates = map[string]string{
	ConversationTypeInterview: `Transcribe this audio in {{ .Language }} and provide interview analysis.

Format:
1. TRANSCRIPTION: [full transcription]
2. OVERALL ASSESSMENT: [rating and summary]
3. STRENGTHS: [bullet points]
4. WEAKNESSES: [bullet points]
5. RECOMMENDATIONS: [specific advice]`,

	ConversationTypeBusinessMeeting: `Transcribe this audio in {{ .Language }} and provide business meeting summary.

Format:
1. TRANSCRIPTION: [full transcription]
2. SUMMARY: [key points discussed]
3. ACTION ITEMS: [list of tasks/decisions with responsible parties if mentioned]
4. NEXT STEPS: [follow-up actions]`,
}

// Prompts renders the generation prompt for a conversation type.
type Prompts struct {
	templates map[string]*template.Template
}

// promptsFile is the YAML layout accepted by TRANSCRIBER_PROMPTS_FILE:
//
//	prompts:
//	  Interview: "Transcribe this audio in {{ .Language }} ..."
type promptsFile struct {
	Prompts map[string]string `json:"prompts"`
}

func NewPrompts(raw map[string]string) (*Prompts, error) {
	p := &Prompts{templates: make(map[string]*template.Template, len(raw))}
	for conversationType, text := range raw {
		tmpl, err := template.New(conversationType).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parsing prompt template %q: %w", conversationType, err)
		}
		p.templates[conversationType] = tmpl
	}
	return p, nil
}

func DefaultPrompts() *Prompts {
	p, err := NewPrompts(defaultPromptTemplates)
	if err != nil {
		panic(fmt.Errorf("internal error: %w", err))
	}
	return p
}

// LoadPrompts returns the built-in templates, overridden per conversation type
// by the entries of the YAML file at path when path is not empty.
func LoadPrompts(path string) (*Prompts, error) {
	raw := make(map[string]string, len(defaultPromptTemplates))
	for k, v := range defaultPromptTemplates {
		raw[k] = v
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading prompts file: %w", err)
		}
		var file promptsFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decoding prompts file: %w", err)
		}
		for k, v := range file.Prompts {
			raw[k] = v
		}
	}

	return NewPrompts(raw)
}

// Render fails only when no template exists for conversationType, which means
// the catalog and the templates are out of sync.
func (p *Prompts) Render(conversationType, language string) (string, error) {
	tmpl, ok := p.templates[conversationType]
	if !ok {
		return "", fmt.Errorf("unknown conversation type: %s", conversationType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Language string }{Language: language}); err != nil {
		return "", fmt.Errorf("rendering prompt for %s: %w", conversationType, err)
	}
	return buf.String(), nil
}
