package extract

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/barback/internal/cocktail"
	"github.com/jackzampolin/barback/internal/llmcall"
	"github.com/jackzampolin/barback/internal/providers"
)

func TestLLMClassifierBuildsRequest(t *testing.T) {
	mock := providers.NewScriptedMockClient(providers.MockResponse{
		Content: `{"name":"Moscow Mule","ingredients":["vodka","ginger beer","lime"],"price":11.5,"ingredient_notes":[],"tasting_notes":[],"category":"Mule"}`,
	})
	c, err := NewLLMClassifier(LLMClassifierConfig{Client: mock, Model: "gpt-4o", Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewLLMClassifier() error = %v", err)
	}

	rec, err := c.Classify(context.Background(), "Moscow Mule 11.5")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if rec.Category != cocktail.Mule || rec.Name != "Moscow Mule" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Price == nil || *rec.Price != 11.5 {
		t.Fatalf("unexpected price %v", rec.Price)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.Model != "gpt-4o" {
		t.Fatalf("expected model gpt-4o, got %s", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages %+v", req.Messages)
	}
	if req.Messages[0].Content != cocktail.SystemPrompt() {
		t.Fatal("system message should be the cocktail system prompt")
	}
	if req.Messages[1].Content != "cocktail : Moscow Mule 11.5" {
		t.Fatalf("unexpected user message %q", req.Messages[1].Content)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
		t.Fatalf("expected json_schema response format, got %+v", req.ResponseFormat)
	}
	if !strings.Contains(string(req.ResponseFormat.JSONSchema), `"name":"cocktails"`) {
		t.Fatalf("response format missing schema name: %s", req.ResponseFormat.JSONSchema)
	}
}

func TestLLMClassifierValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"prose", "This looks like a wine list."},
		{"category outside set", `{"name":"x","ingredients":[],"price":null,"ingredient_notes":[],"tasting_notes":[],"category":"Goblet"}`},
		{"missing field", `{"name":"x","ingredients":[],"price":null,"ingredient_notes":[],"category":"Rocks"}`},
		{"extra field", `{"name":"x","ingredients":[],"price":null,"ingredient_notes":[],"tasting_notes":[],"category":"Rocks","abv":12}`},
		{"wrong type", `{"name":"x","ingredients":"gin","price":null,"ingredient_notes":[],"tasting_notes":[],"category":"Rocks"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewLLMClassifier(LLMClassifierConfig{
				Client: providers.NewScriptedMockClient(providers.MockResponse{Content: tt.content}),
				Logger: discardLogger(),
			})
			if err != nil {
				t.Fatalf("NewLLMClassifier() error = %v", err)
			}
			_, err = c.Classify(context.Background(), "entry")
			if _, ok := providers.IsValidationError(err); !ok {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestLLMClassifierTransportError(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	c, err := NewLLMClassifier(LLMClassifierConfig{
		Client: providers.NewScriptedMockClient(providers.MockResponse{Err: boom}),
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewLLMClassifier() error = %v", err)
	}
	_, err = c.Classify(context.Background(), "entry")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if _, ok := providers.IsValidationError(err); ok {
		t.Fatal("transport failure must not be reported as a validation error")
	}
}

func TestLLMClassifierRecordsCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	rec, err := llmcall.OpenFile(path, discardLogger())
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}

	c, err := NewLLMClassifier(LLMClassifierConfig{
		Client: providers.NewScriptedMockClient(
			providers.MockResponse{Content: `{"name":"","ingredients":[],"price":null,"ingredient_notes":[],"tasting_notes":[],"category":"No Cocktail"}`},
			providers.MockResponse{Err: errors.New("boom")},
		),
		Recorder: rec,
		Logger:   discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewLLMClassifier() error = %v", err)
	}

	if _, err := c.Classify(context.Background(), "Wines"); err != nil {
		t.Fatalf("first Classify() error = %v", err)
	}
	if _, err := c.Classify(context.Background(), "Beers"); err == nil {
		t.Fatal("expected second Classify to fail")
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	calls, err := llmcall.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 traced calls, got %d", len(calls))
	}
	if calls[0].EntryIndex != 0 || calls[1].EntryIndex != 1 {
		t.Fatalf("unexpected entry indexes %d, %d", calls[0].EntryIndex, calls[1].EntryIndex)
	}
	if !calls[0].Success || calls[1].Success {
		t.Fatalf("unexpected success flags %+v", calls)
	}
	if calls[0].PromptKey != cocktail.SystemPromptKey {
		t.Fatalf("unexpected prompt key %s", calls[0].PromptKey)
	}
	if calls[0].UserPromptKey != cocktail.UserPromptKey {
		t.Fatalf("unexpected user prompt key %s", calls[0].UserPromptKey)
	}
	if calls[0].InputHash != llmcall.HashText(cocktail.UserPrompt("Wines")) {
		t.Fatalf("unexpected input hash %s", calls[0].InputHash)
	}
}

func TestNewLLMClassifierRequiresClient(t *testing.T) {
	if _, err := NewLLMClassifier(LLMClassifierConfig{}); err == nil {
		t.Fatal("expected error without client")
	}
}

func TestLLMClassifierSystemPromptOverride(t *testing.T) {
	mock := providers.NewScriptedMockClient(providers.MockResponse{
		Content: `{"name":"","ingredients":[],"price":null,"ingredient_notes":[],"tasting_notes":[],"category":"No Cocktail"}`,
	})
	c, err := NewLLMClassifier(LLMClassifierConfig{
		Client:       mock,
		SystemPrompt: "Label each drink by its glass.",
		Logger:       discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewLLMClassifier() error = %v", err)
	}
	if _, err := c.Classify(context.Background(), "Draft Beers"); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	if got := reqs[0].Messages[0].Content; got != "Label each drink by its glass." {
		t.Fatalf("system message = %q, want the override", got)
	}
}

func TestLLMClassifierPrefersParsedJSON(t *testing.T) {
	client := parsedOnlyClient{
		parsed: `{"name":"Paloma","ingredients":["tequila","grapefruit"],"price":null,"ingredient_notes":[],"tasting_notes":["tart"],"category":"Highball"}`,
	}
	c, err := NewLLMClassifier(LLMClassifierConfig{Client: client, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewLLMClassifier() error = %v", err)
	}
	rec, err := c.Classify(context.Background(), "Paloma")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if rec.Name != "Paloma" || rec.Category != cocktail.Highball {
		t.Fatalf("unexpected record %+v", rec)
	}
}

// parsedOnlyClient returns prose content alongside already-parsed JSON, so a
// successful decode shows the parsed form was used.
type parsedOnlyClient struct {
	parsed string
}

func (p parsedOnlyClient) Chat(_ context.Context, _ *providers.ChatRequest) (*providers.ChatResult, error) {
	return &providers.ChatResult{
		Success:    true,
		Content:    "Here is the drink you asked about.",
		ParsedJSON: json.RawMessage(p.parsed),
		Provider:   "parsed",
	}, nil
}

func (parsedOnlyClient) Name() string { return "parsed" }
