// Package prompt provides prompt template loading for the workflow agents.
//
// Core types:
//   - Loader: Loads prompt templates from project directories or embedded defaults
//   - Builder: Assembles ad-hoc prompts section by section
//
// Every agent role has two templates: "<role>-system" holds the persona
// instruction and "<role>-request" renders the request from story state.
// Projects override either by dropping a file with the same name into
// .storyflow/prompts/ or prompts/.
//
// Example usage:
//
//	loader := prompt.NewLoader(".")
//	system, err := loader.Load("critic-system")
//	request, err := loader.LoadWithVars("critic-request", map[string]any{
//	    "Plot": state.Plot,
//	})
package prompt
