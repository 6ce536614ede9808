package generate

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/llmkit/model"
)

// DefaultModelID is used when no model is configured.
const DefaultModelID = "openai/gpt-4o-mini"

// Provider names accepted in a model id.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderClaude = "claude"
)

// ModelID is a parsed provider/model pair.
type ModelID struct {
	Provider string
	Model    string
}

func (m ModelID) String() string {
	return m.Provider + "/" + m.Model
}

// ParseModelID splits "provider/model". The model part may itself contain
// slashes ("ollama/library/llama3").
func ParseModelID(s string) (ModelID, error) {
	provider, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || provider == "" || name == "" {
		return ModelID{}, fmt.Errorf("%w: %q (want provider/model)", ErrInvalidModelID, s)
	}
	return ModelID{Provider: strings.ToLower(provider), Model: name}, nil
}

// ClaudeModel maps a claude model id's model part to a concrete model. Tier
// names select from the llmkit catalogue; anything else passes through.
// Announcements are summarisation work, so "default" picks the fast tier.
func ClaudeModel(name string) string {
	switch name {
	case "thinking":
		return string(modelForTier(model.TierThinking))
	case "balanced":
		return string(modelForTier(model.TierDefault))
	case "fast", "default":
		return string(modelForTier(model.TierFast))
	default:
		return name
	}
}

func modelForTier(t model.Tier) model.ModelName {
	switch t {
	case model.TierThinking:
		return model.ModelOpus
	case model.TierFast:
		return model.ModelHaiku
	default:
		return model.ModelSonnet
	}
}
