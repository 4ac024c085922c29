package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"engineBack/internal/models"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	defaultAnthropicModel   = "claude-3-sonnet"
	anthropicVersion        = "2023-06-01"
)

type AnthropicClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

func NewAnthropicClient(httpClient *http.Client, apiKey, model string) *AnthropicClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicClient{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    defaultAnthropicBaseURL,
		model:      model,
	}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

func (c *AnthropicClient) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	if c == nil {
		return GenerationResult{}, errors.New("anthropic client is not configured")
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return GenerationResult{}, errors.New("anthropic api key is empty")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	payload := map[string]interface{}{
		"model":      model,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
	}
	if req.SystemPrompt != "" {
		payload["system"] = req.SystemPrompt
	}
	if req.Temperature > 0 {
		payload["temperature"] = req.Temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/messages", strings.TrimRight(c.baseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return GenerationResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return GenerationResult{}, &models.UpstreamError{Provider: "anthropic", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return GenerationResult{}, &models.UpstreamError{
			Provider: "anthropic",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(data)),
		}
	}

	var parsed struct {
		Model   string `json:"model"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return GenerationResult{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return GenerationResult{}, errors.New("anthropic returned no content")
	}

	respModel := parsed.Model
	if respModel == "" {
		respModel = model
	}
	return GenerationResult{
		Content: parsed.Content[0].Text,
		Model:   respModel,
		Usage: TokenUsage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}

func (c *AnthropicClient) EstimateCost(req GenerationRequest) float64 {
	return estimateRequestCost(req, c.pricingFor(req.Model))
}

func (c *AnthropicClient) CalculateCost(usage TokenUsage, model string) float64 {
	return usageCost(usage, c.pricingFor(model))
}

func (c *AnthropicClient) pricingFor(model string) modelPricing {
	if model == "" {
		model = c.model
	}
	if pricing, ok := anthropicPricing[model]; ok {
		return pricing
	}
	return anthropicPricing[defaultAnthropicModel]
}
