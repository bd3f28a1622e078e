package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// maxValidationContent bounds the raw output kept on a ValidationError.
const maxValidationContent = 2000

// DecodeStructured parses model output, validates it against the canonical
// schema and decodes it into out. Every failure is a *ValidationError.
func DecodeStructured(content string, schemaRaw json.RawMessage, out any) error {
	parsed, err := parseStructuredJSON(content)
	if err != nil {
		return newValidationError("parse", content, err)
	}
	if err := validateStructuredJSON(schemaRaw, parsed); err != nil {
		return newValidationError("schema", content, err)
	}
	if err := json.Unmarshal(parsed, out); err != nil {
		return newValidationError("decode", content, err)
	}
	return nil
}

// DecodeResult decodes a chat result, using the client's ParsedJSON when it
// is set and falling back to parsing Content otherwise.
func DecodeResult(result *ChatResult, schemaRaw json.RawMessage, out any) error {
	if result == nil {
		return newValidationError("parse", "", fmt.Errorf("no chat result"))
	}
	if len(result.ParsedJSON) == 0 {
		return DecodeStructured(result.Content, schemaRaw, out)
	}
	if err := validateStructuredJSON(schemaRaw, result.ParsedJSON); err != nil {
		return newValidationError("schema", string(result.ParsedJSON), err)
	}
	if err := json.Unmarshal(result.ParsedJSON, out); err != nil {
		return newValidationError("decode", string(result.ParsedJSON), err)
	}
	return nil
}

func newValidationError(stage, content string, err error) *ValidationError {
	if len(content) > maxValidationContent {
		content = content[:maxValidationContent] + "...[truncated]"
	}
	return &ValidationError{Stage: stage, Content: content, Err: err}
}

// parseStructuredJSON parses JSON from model output, with lightweight recovery
// for markdown code fences and surrounding text.
func parseStructuredJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty structured output")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}

		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			normalized, mErr := json.Marshal(parsed)
			if mErr != nil {
				return nil, fmt.Errorf("failed to normalize structured output: %w", mErr)
			}
			return normalized, nil
		}
	}

	return nil, fmt.Errorf("failed to parse structured JSON")
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop opening fence (and its language tag).
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractJSONCandidate(content string) string {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(trimmed, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}

// validateStructuredJSON validates parsed JSON against the canonical schema.
func validateStructuredJSON(schemaRaw, parsed json.RawMessage) error {
	if len(parsed) == 0 {
		return fmt.Errorf("no structured output to validate")
	}
	if len(schemaRaw) == 0 {
		return nil
	}

	coreSchema, err := extractValidationSchema(schemaRaw)
	if err != nil {
		return err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(coreSchema)); err != nil {
		return fmt.Errorf("failed to load structured schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile structured schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(parsed, &doc); err != nil {
		return fmt.Errorf("failed to decode structured JSON for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("structured output does not match schema: %w", err)
	}
	return nil
}

// extractValidationSchema unwraps a {"name","strict","schema"} document down
// to the schema itself. Anything else is taken as the schema.
func extractValidationSchema(schemaRaw json.RawMessage) (json.RawMessage, error) {
	var def struct {
		Schema json.RawMessage `json:"schema"`
	}
	if err := json.Unmarshal(schemaRaw, &def); err != nil {
		return nil, fmt.Errorf("invalid structured schema JSON: %w", err)
	}
	if len(def.Schema) > 0 {
		return def.Schema, nil
	}
	return schemaRaw, nil
}
