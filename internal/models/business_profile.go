package models

import "time"

// BusinessProfile is the tenant-scoped unit of budget and approval configuration.
type BusinessProfile struct {
	ID              string            `json:"id"`
	OrganizationID  string            `json:"organization_id"`
	Name            string            `json:"name"`
	Description     *string           `json:"description,omitempty"`
	Market          *string           `json:"market,omitempty"`
	Platforms       []string          `json:"platforms,omitempty"`
	RiskLevel       string            `json:"risk_level"`
	ComplianceFlags []string          `json:"compliance_flags,omitempty"`
	AIProviders     AIProviderConfigs `json:"ai_providers,omitempty"`
	IsActive        bool              `json:"is_active"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       *time.Time        `json:"updated_at,omitempty"`
}

const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// AIProviderConfigs maps provider name to its per-profile configuration.
type AIProviderConfigs map[string]AIProviderConfig

// AIProviderConfig holds one provider's settings for a business profile.
type AIProviderConfig struct {
	Provider    string  `json:"provider"`
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	Enabled     bool    `json:"enabled"`
}
