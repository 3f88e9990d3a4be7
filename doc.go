// Package thinkspaces is the agent interaction core of Think Spaces, an
// application for organizing spaces of notes ("artifacts") and chatting with
// LLM personas ("agents") that see those notes as context.
//
// # Core Interfaces
//
// The root package defines the contracts every component implements:
//
//   - [Provider]: LLM backend turning a [CompletionRequest] into a [CompletionResponse]
//   - [Registry]: name → [Factory] lookup, built once at startup
//   - [Assembler]: recent artifacts, agent history and system prompt for one call
//   - [Executor]: resolve, assemble, generate; [Executor.Interact] also persists
//   - [Store]: relational persistence for spaces, artifacts, agents and interactions
//
// # Quick Start
//
//	reg := thinkspaces.NewRegistry()
//	_ = reg.Register("echo", func(model string) (thinkspaces.Provider, error) {
//		return echo.New(model), nil
//	})
//
//	store := sqlite.New("thinkspaces.db")
//	exec := thinkspaces.NewExecutor(reg, thinkspaces.NewAssembler(store, store))
//
//	rec, result, err := exec.Interact(ctx, agent, thinkspaces.InteractionRequest{
//		Prompt:       "What changed this week?",
//		ContextLimit: thinkspaces.DefaultContextLimit,
//	}, store)
//
// # Included Implementations
//
// Providers: provider/echo, provider/openai, provider/groq, provider/ollama, provider/gemini.
// provider/resolve registers all of them from configuration.
// Storage: store/sqlite (local), store/postgres.
//
// See cmd/thinkspaces for the HTTP server and CLI.
package thinkspaces
