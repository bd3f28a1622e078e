// Package extract classifies menu entries with an LLM and writes the cocktails
// it finds to a JSON file.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/barback/internal/cocktail"
	"github.com/jackzampolin/barback/internal/llmcall"
	"github.com/jackzampolin/barback/internal/providers"
)

// Classifier turns one raw menu entry into one cocktail.Record.
type Classifier interface {
	Classify(ctx context.Context, text string) (cocktail.Record, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, text string) (cocktail.Record, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, text string) (cocktail.Record, error) {
	return f(ctx, text)
}

// LLMClassifierConfig configures an LLMClassifier.
type LLMClassifierConfig struct {
	Client      providers.LLMClient
	Model       string  // empty uses the client default
	Temperature float64 // 0 uses the provider default

	// SystemPrompt overrides cocktail.SystemPrompt when set.
	SystemPrompt string

	Recorder *llmcall.Recorder
	Logger   *slog.Logger
}

// LLMClassifier classifies entries with one structured-output chat call each.
type LLMClassifier struct {
	client       providers.LLMClient
	model        string
	temperature  float64
	systemPrompt string
	format       *providers.ResponseFormat
	recorder     *llmcall.Recorder
	logger       *slog.Logger

	calls int
}

// NewLLMClassifier creates a classifier bound to the cocktail schema.
func NewLLMClassifier(cfg LLMClassifierConfig) (*LLMClassifier, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	format, err := providers.NewJSONSchemaFormat(cocktail.ResponseFormat())
	if err != nil {
		return nil, fmt.Errorf("failed to build response format: %w", err)
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = cocktail.SystemPrompt()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMClassifier{
		client:       cfg.Client,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		systemPrompt: systemPrompt,
		format:       format,
		recorder:     cfg.Recorder,
		logger:       logger,
	}, nil
}

// Classify sends text to the model and validates the reply locally.
// Schema violations are returned as *providers.ValidationError; transport
// and API errors are returned as the client reported them.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (cocktail.Record, error) {
	index := c.calls
	c.calls++

	userPrompt := cocktail.UserPrompt(text)
	req := &providers.ChatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []providers.Message{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: c.format,
	}

	result, err := c.client.Chat(ctx, req)
	c.recorder.Record(result, llmcall.RecordOptions{
		EntryIndex:    index,
		PromptKey:     cocktail.SystemPromptKey,
		PromptText:    c.systemPrompt,
		UserPromptKey: cocktail.UserPromptKey,
		UserText:      userPrompt,
	})
	if err != nil {
		return cocktail.Record{}, fmt.Errorf("%s chat failed: %w", c.client.Name(), err)
	}

	var rec cocktail.Record
	if err := providers.DecodeResult(result, c.format.JSONSchema, &rec); err != nil {
		c.logger.Debug("model output failed validation", "entry", index, "content", result.Content)
		return cocktail.Record{}, err
	}
	if !rec.Category.Valid() {
		return cocktail.Record{}, &providers.ValidationError{
			Stage:   "decode",
			Content: result.Content,
			Err:     fmt.Errorf("missing category"),
		}
	}
	return rec, nil
}

var _ Classifier = (*LLMClassifier)(nil)
