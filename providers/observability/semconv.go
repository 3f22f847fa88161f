package observability

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "openai")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "gpt-4.1")
	AttrLLMModel = "llm.model"

	// AttrLLMResponseID is the unique response identifier from the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMCostUSD is the estimated cost of the call in USD
	AttrLLMCostUSD = "llm.cost.usd"
)

// --- HTTP Attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPDuration         = "http.request.duration"
)

// --- Recovery Attributes ---

const (
	// AttrRecoveryStrategy is the extraction strategy that located the payload
	AttrRecoveryStrategy = "recovery.strategy"

	// AttrRecoveryRepaired is true when the repair pass ran
	AttrRecoveryRepaired = "recovery.repaired"

	// AttrRecoveryStage is the failing pipeline stage
	AttrRecoveryStage = "recovery.stage"

	// AttrRecoveryReason is the failure kind
	AttrRecoveryReason = "recovery.reason"

	// AttrStoryboardAttempt is the 1-based generation attempt
	AttrStoryboardAttempt = "storyboard.attempt"

	// AttrStoryboardPages is the number of pages requested
	AttrStoryboardPages = "storyboard.pages"
)

// --- General Attributes ---

const (
	AttrError             = "error"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
	AttrDuration          = "duration"
	AttrRequestID         = "request.id"
)

// --- Span Names ---

const (
	SpanClientSendMessage  = "client.send_message"
	SpanStoryboardGenerate = "storyboard.generate"
	SpanRecoveryRecover    = "recovery.recover"
)

// --- Metric Names ---

const (
	MetricClientRequestCount    = "toonboard.client.request.count"
	MetricClientRequestDuration = "toonboard.client.request.duration"
	MetricClientTokensTotal     = "toonboard.client.tokens.total"
	MetricClientCost            = "toonboard.client.cost.usd"
	MetricRecoveryOutcome       = "toonboard.recovery.outcome.count"
)
