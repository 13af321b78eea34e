package config

import "time"

const (
	// Minimum spacing between outbound generation calls, shared by all
	// requests in one process.
	MinDispatchInterval = 2400 * time.Millisecond

	// Retry budget against upstream 429s.
	MaxGenerateAttempts = 4
	BackoffBase         = 500 * time.Millisecond
	BackoffJitterMax    = 400 * time.Millisecond

	// Conversation window sent upstream. Older turns are kept client-side
	// for display but dropped from the model input.
	HistoryWindow = 10

	// Upstream model and request timeout
	GeminiModel    = "gemini-2.0-flash"
	RequestTimeout = 90 * time.Second

	// Per-client inbound rate limit (per minute), enforced when Redis is
	// configured
	RateLimitPerMinute = 20

	// Stored transcript cap per profile
	MaxStoredMessages = 500

	// Ambient group conversations stop once a chat is this long
	AmbientMessageCap = 25
)

// Token prices in USD per 1M tokens, used for the usage ledger estimate.
const (
	PromptPricePerMTok     = "0.10"
	CompletionPricePerMTok = "0.40"
)
