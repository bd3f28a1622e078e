package cocktail

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

//go:embed system.tmpl
var systemPromptTmpl string

//go:embed user.tmpl
var userPromptTmpl string

var (
	systemTemplate = template.Must(template.New("system").Parse(systemPromptTmpl))
	userTemplate   = template.Must(template.New("user").Parse(userPromptTmpl))
)

// Prompt keys
const (
	SystemPromptKey = "extract.cocktail.system"
	UserPromptKey   = "extract.cocktail.user"
)

// SystemPrompt returns the system prompt describing the taxonomy and extraction task.
func SystemPrompt() string {
	var buf bytes.Buffer
	data := struct{ Categories string }{Categories: strings.Join(DisplayNames(), ", ")}
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return systemPromptTmpl
	}
	return strings.TrimSpace(buf.String())
}

// UserPrompt builds the user message for one menu entry.
func UserPrompt(text string) string {
	var buf bytes.Buffer
	data := struct{ Text string }{Text: text}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return strings.TrimSpace(buf.String())
}
