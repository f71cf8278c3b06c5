// Package agent defines the language-model capability the story workflow
// depends on, and an implementation of it over prompt templates.
//
// The workflow only sees Writer. LLMWriter satisfies it by rendering the
// role's system and request prompts, asking a Completer for JSON in the
// record's shape and decoding the reply. Two Completers are provided:
//
//   - ClientCompleter wraps flowgraph llm.Client values (the Claude CLI in
//     production, llm.MockClient in tests), one per role if desired.
//   - AnthropicCompleter calls the Anthropic Messages API directly.
//
// Example:
//
//	completer := agent.NewClaudeCLICompleter(workdir, nil)
//	writer := agent.NewLLMWriter(completer, prompt.NewLoader(workdir))
//	plot, err := writer.Plot(ctx, agent.Brief{Concept: "A lighthouse keeper finds a map"})
package agent
