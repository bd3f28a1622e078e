package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName         = "openai"
	OpenAIDefaultModel = "gpt-4-1106-preview"
)

// OpenAIConfig holds configuration for the OpenAI chat client.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string // Optional (tests, compatible gateways)
	DefaultModel string
	Timeout      time.Duration // 0 = no client-side timeout
	MaxRetries   int           // SDK transport retries, 0 = fail on first error
	RateLimit    int           // Requests per minute, 0 = unlimited
	HTTPClient   *http.Client  // Optional (tests)
}

// OpenAIClient implements LLMClient using the official OpenAI SDK.
type OpenAIClient struct {
	defaultModel string
	limiter      *RateLimiter
	client       openai.Client
}

// NewOpenAIClient creates a new OpenAI chat client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = OpenAIDefaultModel
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	c := &OpenAIClient{
		defaultModel: cfg.DefaultModel,
		client:       openai.NewClient(opts...),
	}
	if cfg.RateLimit > 0 {
		c.limiter = NewRateLimiter(cfg.RateLimit)
	}
	return c
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Model returns the configured default model.
func (c *OpenAIClient) Model() string {
	return c.defaultModel
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenAIName,
		ModelUsed: model,
	}
	fail := func(errType string, err error) (*ChatResult, error) {
		result.Success = false
		result.ErrorType = errType
		result.ErrorMessage = err.Error()
		result.TotalTime = time.Since(start)
		return result, err
	}

	params, err := c.buildParams(model, req)
	if err != nil {
		return fail("invalid_request", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail("context_cancelled", err)
		}
	}

	execStart := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, params)
	result.ExecutionTime = time.Since(execStart)
	if err != nil {
		err = c.mapError(err)
		if rle, ok := IsRateLimitError(err); ok && c.limiter != nil {
			c.limiter.Record429(rle.RetryAfter)
		}
		return fail("http_error", err)
	}

	if len(completion.Choices) == 0 {
		return fail("empty_response", fmt.Errorf("no choices in response"))
	}

	content := completion.Choices[0].Message.Content
	if refusal := completion.Choices[0].Message.Refusal; content == "" && refusal != "" {
		return fail("refusal", fmt.Errorf("model refused: %s", refusal))
	}

	result.Success = true
	result.Content = content
	if completion.Model != "" {
		result.ModelUsed = completion.Model
	}
	result.PromptTokens = int(completion.Usage.PromptTokens)
	result.CompletionTokens = int(completion.Usage.CompletionTokens)
	result.TotalTokens = int(completion.Usage.TotalTokens)
	result.TotalTime = time.Since(start)

	if req.ResponseFormat != nil && content != "" {
		var parsed json.RawMessage
		if err := json.Unmarshal([]byte(content), &parsed); err == nil {
			result.ParsedJSON = parsed
		}
	}

	return result, nil
}

func (c *OpenAIClient) buildParams(model string, req *ChatRequest) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}

	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "user":
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			return params, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	if req.ResponseFormat != nil && len(req.ResponseFormat.JSONSchema) > 0 {
		var def struct {
			Name        string         `json:"name"`
			Description string         `json:"description"`
			Strict      *bool          `json:"strict"`
			Schema      map[string]any `json:"schema"`
		}
		if err := json.Unmarshal(req.ResponseFormat.JSONSchema, &def); err != nil {
			return params, fmt.Errorf("invalid response format schema: %w", err)
		}
		if def.Name == "" {
			def.Name = "response"
		}
		schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   def.Name,
			Schema: def.Schema,
		}
		if def.Description != "" {
			schemaParam.Description = openai.String(def.Description)
		}
		if def.Strict != nil {
			schemaParam.Strict = openai.Bool(*def.Strict)
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		}
	}

	return params, nil
}

func (c *OpenAIClient) mapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("openai request failed: %w", err)
	}
	message := strings.TrimSpace(apiErr.Message)
	if apiErr.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Duration(0)
		if apiErr.Response != nil {
			retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		return &RateLimitError{
			Message:    fmt.Sprintf("OpenAI rate limited: %s", message),
			RetryAfter: retryAfter,
			StatusCode: apiErr.StatusCode,
		}
	}
	return &APIError{
		Provider:   OpenAIName,
		StatusCode: apiErr.StatusCode,
		Message:    message,
	}
}

var _ LLMClient = (*OpenAIClient)(nil)
