// Package openai implements [ai.Provider] for OpenAI-compatible chat
// completion APIs (OpenAI, Azure, Ollama, OpenRouter and anything else that
// speaks POST /chat/completions).
//
// The provider never reads the environment. Configure it explicitly:
//
//	p := openai.New().WithAPIKey(key).WithBaseURL(url)
package openai
