package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/toonboard/core/cost"
	"github.com/leofalp/toonboard/providers/ai"
	"github.com/leofalp/toonboard/providers/observability"
)

// ErrEmptyPrompt is returned by SendMessage for a blank prompt.
var ErrEmptyPrompt = errors.New("prompt cannot be empty")

// Client sends single-turn prompts through a provider and its middleware
// chain. It holds no conversation state and is safe for concurrent use.
type Client struct {
	llmProvider      ai.Provider
	observer         observability.Provider
	systemPrompt     string
	defaultModel     string
	generationConfig *ai.GenerationConfig
	responseFormat   *ai.ResponseFormat
	send             SendFunc
}

// ClientOptions collects the settings applied by functional options.
type ClientOptions struct {
	SystemPrompt     string
	DefaultModel     string
	GenerationConfig *ai.GenerationConfig
	ResponseFormat   *ai.ResponseFormat
	Observer         observability.Provider
	ModelCost        *cost.ModelCost
	Middlewares      []MiddlewareConfig
}

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(prompt string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.SystemPrompt = prompt
	}
}

// WithDefaultModel sets the model used when a request does not name one.
func WithDefaultModel(model string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.DefaultModel = model
	}
}

// WithGenerationConfig sets sampling and token limits.
func WithGenerationConfig(config ai.GenerationConfig) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.GenerationConfig = &config
	}
}

// WithResponseFormat asks the provider for a specific output format, e.g.
// "json_object".
func WithResponseFormat(format string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.ResponseFormat = &ai.ResponseFormat{Type: format}
	}
}

// WithObserver enables tracing and metrics. The observability middleware is
// installed as the outermost wrapper.
func WithObserver(observer observability.Provider) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Observer = observer
	}
}

// WithModelCost sets the pricing used to estimate the cost of each call.
// It only takes effect together with WithObserver.
func WithModelCost(pricing cost.ModelCost) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.ModelCost = &pricing
	}
}

// WithMiddleware appends middlewares to the chain. The first one given is the
// outermost, after the observability middleware.
func WithMiddleware(middlewares ...MiddlewareConfig) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// New builds a Client around provider.
func New(provider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if provider == nil {
		return nil, errors.New("provider cannot be nil")
	}

	options := &ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	for i, mw := range options.Middlewares {
		if mw.Send == nil {
			return nil, fmt.Errorf("middleware at index %d has a nil Send function", i)
		}
	}

	middlewares := options.Middlewares
	if options.Observer != nil {
		middlewares = append([]MiddlewareConfig{NewObservabilityMiddleware(options.Observer, options.DefaultModel, options.ModelCost)}, middlewares...)
	}

	return &Client{
		llmProvider:      provider,
		observer:         options.Observer,
		systemPrompt:     options.SystemPrompt,
		defaultModel:     options.DefaultModel,
		generationConfig: options.GenerationConfig,
		responseFormat:   options.ResponseFormat,
		send:             buildSendChain(provider, middlewares),
	}, nil
}

// Observer returns the configured observability provider, or nil.
func (c *Client) Observer() observability.Provider {
	return c.observer
}

// SendMessage sends prompt as a single user message and returns the raw
// completion. The response content is not interpreted.
func (c *Client) SendMessage(ctx context.Context, prompt string) (*ai.ChatResponse, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	return c.send(ctx, ai.ChatRequest{
		Model:            c.defaultModel,
		SystemPrompt:     c.systemPrompt,
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		GenerationConfig: c.generationConfig,
		ResponseFormat:   c.responseFormat,
	})
}
