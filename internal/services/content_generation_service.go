package services

import (
	"context"
	"net/http"
	"time"

	"engineBack/internal/models"
)

// ProfileResolver resolves business profiles for generation.
type ProfileResolver interface {
	GetByID(ctx context.Context, profileID string) (*models.BusinessProfile, error)
}

// ContentGenerationRequest asks for an AI-generated content pack.
type ContentGenerationRequest struct {
	BusinessProfileID string                 `json:"business_profile_id"`
	UserID            string                 `json:"-"`
	Title             string                 `json:"title"`
	ContentType       string                 `json:"content_type"`
	Prompt            string                 `json:"prompt"`
	SystemPrompt      string                 `json:"system_prompt,omitempty"`
	Provider          string                 `json:"provider"`
	Model             string                 `json:"model,omitempty"`
	MaxTokens         int                    `json:"max_tokens,omitempty"`
	Temperature       float64                `json:"temperature,omitempty"`
	Description       *string                `json:"description,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

// ContentGenerationService produces draft content packs through a
// budget-gated AI provider configured on the business profile.
type ContentGenerationService struct {
	Profiles   ProfileResolver
	Packs      *ContentPackService
	Budget     BudgetRecorder
	HTTPClient *http.Client

	now func() time.Time
}

func NewContentGenerationService(profiles ProfileResolver, packs *ContentPackService, budget BudgetRecorder) *ContentGenerationService {
	return &ContentGenerationService{Profiles: profiles, Packs: packs, Budget: budget, now: time.Now}
}

// Generate runs the configured provider under the budget gate and stores the
// result as a new draft pack carrying the generation audit trail.
func (s *ContentGenerationService) Generate(ctx context.Context, req ContentGenerationRequest) (*models.ContentPack, *GenerationResult, error) {
	profile, err := s.Profiles.GetByID(ctx, req.BusinessProfileID)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, models.ErrProfileNotFound
	}

	cfg, ok := profile.AIProviders[req.Provider]
	if !ok || !cfg.Enabled {
		return nil, nil, models.ErrProviderDisabled
	}

	provider, err := NewAIProvider(cfg, s.HTTPClient)
	if err != nil {
		return nil, nil, err
	}

	generator := &BudgetAwareGenerator{
		Provider:  provider,
		Budget:    s.Budget,
		ProfileID: req.BusinessProfileID,
		UserID:    req.UserID,
	}

	genReq := GenerationRequest{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
	}
	if genReq.Model == "" {
		genReq.Model = cfg.Model
	}
	if genReq.MaxTokens <= 0 {
		genReq.MaxTokens = cfg.MaxTokens
	}
	if genReq.Temperature == 0 {
		genReq.Temperature = cfg.Temperature
	}

	result, err := generator.Generate(ctx, genReq)
	if err != nil {
		return nil, nil, err
	}

	contentData := map[string]interface{}{
		"generated":    true,
		"aiProvider":   req.Provider,
		"model":        result.Model,
		"prompt":       req.Prompt,
		"systemPrompt": req.SystemPrompt,
		"content":      result.Content,
		"usage":        result.Usage,
		"generatedAt":  s.now().UTC().Format(time.RFC3339),
	}
	metadata := map[string]interface{}{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["aiGeneration"] = map[string]interface{}{
		"provider": req.Provider,
		"model":    result.Model,
		"tokens":   result.Usage.TotalTokens,
	}

	pack, err := s.Packs.Create(ctx, req.BusinessProfileID, req.UserID, req.Title, req.ContentType, contentData, metadata, req.Description)
	if err != nil {
		return nil, nil, err
	}
	return pack, &result, nil
}
