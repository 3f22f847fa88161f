// Package client sits between raw provider calls and the storyboard
// generator. A Client carries the system prompt, default model and
// generation settings, and threads every request through a middleware chain
// (retry, timeout, logging, rate limiting, observability).
//
// The primary entry point is [New], which accepts an [ai.Provider] and a set
// of functional options such as [WithSystemPrompt] and [WithMiddleware].
package client
