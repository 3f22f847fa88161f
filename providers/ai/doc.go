// Package ai defines the provider-agnostic request and response types shared
// by every LLM backend. Each provider maps these types to its own wire format,
// keeping the rest of the codebase decoupled from provider details.
//
// Request data flows through [ChatRequest] and responses come back as
// [ChatResponse] from a [Provider].
package ai
