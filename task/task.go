package task

import (
	"github.com/randalmurphal/llmkit/model"
)

// Role is the agent persona performing a workflow step.
// This determines which model tier is appropriate.
type Role string

const (
	// Story-shaping roles - need reasoning
	PlotDeveloper Role = "plot_developer"
	Screenwriter  Role = "screenwriter"

	// Standard roles - default tier
	CharacterDesigner Role = "character_designer"
	ThemeAnalyst      Role = "theme_analyst"
	Director          Role = "director"
	Critic            Role = "critic"

	// Fast roles - can use smaller models
	MarketAnalyst Role = "market_analyst"
)

// Roles lists every role in workflow order.
var Roles = []Role{
	PlotDeveloper,
	CharacterDesigner,
	ThemeAnalyst,
	Screenwriter,
	Director,
	Critic,
	MarketAnalyst,
}

// DefaultModelMap maps roles to default models.
var DefaultModelMap = map[Role]model.ModelName{
	PlotDeveloper:     model.ModelOpus,
	Screenwriter:      model.ModelOpus,
	CharacterDesigner: model.ModelSonnet,
	ThemeAnalyst:      model.ModelSonnet,
	Director:          model.ModelSonnet,
	Critic:            model.ModelSonnet,
	MarketAnalyst:     model.ModelHaiku,
}

// TierForRole returns the appropriate tier for a role.
func TierForRole(r Role) model.Tier {
	switch r {
	case PlotDeveloper, Screenwriter:
		return model.TierThinking
	case MarketAnalyst:
		return model.TierFast
	default:
		return model.TierDefault
	}
}

// SelectModel selects the model for a role.
// Uses the default model map unless the role is unknown.
func SelectModel(r Role) model.ModelName {
	if m, ok := DefaultModelMap[r]; ok {
		return m
	}
	// Fall back to tier-based selection
	switch TierForRole(r) {
	case model.TierThinking:
		return model.ModelOpus
	case model.TierFast:
		return model.ModelHaiku
	default:
		return model.ModelSonnet
	}
}
