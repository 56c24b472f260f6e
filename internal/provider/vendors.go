// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import "github.com/pdiddy/deep-research/pkg/types"

// builtins is the vendor table. OpenAI, DeepSeek, xAI, OpenRouter, and
// OpenAI-compatible servers all speak the chat-completions protocol.
var builtins = []Vendor{
	{
		Name: Google,
		Defaults: types.RoleModels{
			Thinking:   "gemini-2.0-flash-thinking-exp",
			Networking: "gemini-2.0-flash-exp",
			Report:     "gemini-2.0-flash-thinking-exp",
		},
		EnvKey:  "GOOGLE_GENERATIVE_AI_API_KEY",
		BaseURL: "https://generativelanguage.googleapis.com",
		Suffix:  "/v1beta",
		Build:   newGemini,
	},
	{
		Name: OpenAI,
		Defaults: types.RoleModels{
			Thinking:   "gpt-4o",
			Networking: "gpt-4o-mini",
			Report:     "gpt-4o",
		},
		EnvKey:  "OPENAI_API_KEY",
		BaseURL: "https://api.openai.com",
		Suffix:  "/v1",
		Build:   newChat,
	},
	{
		Name: Anthropic,
		Defaults: types.RoleModels{
			Thinking:   "claude-3-opus-20240229",
			Networking: "claude-3-sonnet-20240229",
			Report:     "claude-3-opus-20240229",
		},
		EnvKey:  "ANTHROPIC_API_KEY",
		BaseURL: "https://api.anthropic.com",
		Suffix:  "/v1",
		Build:   newAnthropic,
	},
	{
		Name: DeepSeek,
		Defaults: types.RoleModels{
			Thinking:   "deepseek-reasoner",
			Networking: "deepseek-chat",
			Report:     "deepseek-reasoner",
		},
		EnvKey:  "DEEPSEEK_API_KEY",
		BaseURL: "https://api.deepseek.com",
		Suffix:  "/v1",
		Build:   newChat,
	},
	{
		Name: XAI,
		Defaults: types.RoleModels{
			Thinking:   "grok-1",
			Networking: "grok-1",
			Report:     "grok-1",
		},
		EnvKey:  "XAI_API_KEY",
		BaseURL: "https://api.x.ai",
		Suffix:  "/v1",
		Build:   newChat,
	},
	{
		Name: OpenRouter,
		Defaults: types.RoleModels{
			Thinking:   "anthropic/claude-3-opus",
			Networking: "anthropic/claude-3-sonnet",
			Report:     "anthropic/claude-3-opus",
		},
		EnvKey:  "OPENROUTER_API_KEY",
		BaseURL: "https://openrouter.ai",
		Suffix:  "/api/v1",
		Build:   newChat,
	},
	{
		Name: OpenAICompatible,
		Defaults: types.RoleModels{
			Thinking:   "gpt-4",
			Networking: "gpt-3.5-turbo",
			Report:     "gpt-4",
		},
		EnvKey:  "OPENAI_COMPATIBLE_API_KEY",
		BaseURL: "http://localhost:8000",
		Suffix:  "/v1",
		Build:   newChat,
	},
	{
		Name: Ollama,
		Defaults: types.RoleModels{
			Thinking:   "llama3",
			Networking: "llama3",
			Report:     "llama3",
		},
		BaseURL: "http://localhost:11434",
		Suffix:  "/api",
		Build:   newOllama,
	},
}
