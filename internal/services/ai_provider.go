package services

import (
	"context"
	"fmt"
	"net/http"

	"engineBack/internal/models"
)

// GenerationRequest is a provider-agnostic generation call.
type GenerationRequest struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Model        string  `json:"model,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type GenerationResult struct {
	Content string     `json:"content"`
	Model   string     `json:"model"`
	Usage   TokenUsage `json:"usage"`
}

// AIProvider is the capability contract every provider adapter satisfies:
// generate, estimate before, price after.
type AIProvider interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
	EstimateCost(req GenerationRequest) float64
	CalculateCost(usage TokenUsage, model string) float64
	Name() string
}

// modelPricing is USD per single token, stored as per-1K rates divided out.
type modelPricing struct {
	Input  float64
	Output float64
}

// Published per-1K-token prices. Unknown models fall back to the provider's
// default model pricing.
var openAIPricing = map[string]modelPricing{
	"gpt-4":         {Input: 0.03 / 1000, Output: 0.06 / 1000},
	"gpt-4-turbo":   {Input: 0.01 / 1000, Output: 0.03 / 1000},
	"gpt-3.5-turbo": {Input: 0.0005 / 1000, Output: 0.0015 / 1000},
}

var anthropicPricing = map[string]modelPricing{
	"claude-3-opus":   {Input: 0.015 / 1000, Output: 0.075 / 1000},
	"claude-3-sonnet": {Input: 0.003 / 1000, Output: 0.015 / 1000},
	"claude-3-haiku":  {Input: 0.00025 / 1000, Output: 0.00125 / 1000},
}

// defaultCompletionTokens is assumed for estimates when the request does not
// cap the completion.
const defaultCompletionTokens = 500

// estimateTokens approximates token count as one per four characters.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func estimateRequestCost(req GenerationRequest, pricing modelPricing) float64 {
	promptTokens := estimateTokens(req.Prompt + req.SystemPrompt)
	completionTokens := req.MaxTokens
	if completionTokens <= 0 {
		completionTokens = defaultCompletionTokens
	}
	return float64(promptTokens)*pricing.Input + float64(completionTokens)*pricing.Output
}

func usageCost(usage TokenUsage, pricing modelPricing) float64 {
	return float64(usage.PromptTokens)*pricing.Input + float64(usage.CompletionTokens)*pricing.Output
}

// NewAIProvider builds the concrete adapter for a profile's provider config.
func NewAIProvider(cfg models.AIProviderConfig, httpClient *http.Client) (AIProvider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(httpClient, cfg.APIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropicClient(httpClient, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
