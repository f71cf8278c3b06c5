// Package task maps workflow agent roles to model tiers.
//
// Core types:
//   - Role: The agent persona a step speaks as (plot developer, critic, etc.)
//
// Roles that shape the whole story (plot, screenplay) run on the thinking
// tier, reviews and character work on the default tier, and market analysis
// on the fast tier.
//
// Example usage:
//
//	tier := task.TierForRole(task.Critic)      // model.TierDefault
//	name := task.SelectModel(task.PlotDeveloper) // model.ModelOpus
package task
