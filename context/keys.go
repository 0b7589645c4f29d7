package context

import "errors"

// CTXKey - a type for context keys
type CTXKey string

const (
	// EnvironmentCTXKey - the key used for the running environment (sandbox, production, local)
	EnvironmentCTXKey CTXKey = "environment"
	// DebugLoggingCTXKey - context key for debug logging
	DebugLoggingCTXKey CTXKey = "debug_logging"
	// LogLevelCTXKey - context key for application logging level
	LogLevelCTXKey CTXKey = "log_level"
	// LogWriterCTXKey - context key for overriding the log writer
	LogWriterCTXKey CTXKey = "log_writer"

	// VersionCTXKey - context key for version of code
	VersionCTXKey CTXKey = "version"
	// CommitCTXKey - context key for the commit of the code
	CommitCTXKey CTXKey = "commit"
	// BuildTimeCTXKey - context key for the build time of code
	BuildTimeCTXKey CTXKey = "build_time"

	// InfiniServerCTXKey - the context key for the infini api server base url
	InfiniServerCTXKey CTXKey = "infini_server"
	// InfiniAPIKeyCTXKey - the context key for the infini api key id
	InfiniAPIKeyCTXKey CTXKey = "infini_api_key"
	// InfiniSecretCTXKey - the context key for the infini shared secret
	InfiniSecretCTXKey CTXKey = "infini_secret"
	// InfiniWebhookSecretCTXKey - the context key for the infini webhook secret
	InfiniWebhookSecretCTXKey CTXKey = "infini_webhook_secret"

	// CurrencyCacheExpiryDurationCTXKey - context key for currency cache eviction
	CurrencyCacheExpiryDurationCTXKey CTXKey = "currency_cache_expiry"
	// CurrencyCachePurgeDurationCTXKey - context key for currency cache purge
	CurrencyCachePurgeDurationCTXKey CTXKey = "currency_cache_purge"

	// RateLimitPerMinuteCTXKey - the context key for the webhook endpoint rate limit
	RateLimitPerMinuteCTXKey CTXKey = "rate_limit_per_min"
	// RateLimiterBurstCTXKey - context key for allowing a bursting rate limiter
	RateLimiterBurstCTXKey CTXKey = "rate_limit_burst"
)

var (
	// ErrNotInContext - error you get when you ask for something not in the context.
	ErrNotInContext = errors.New("failed to get value from context")
	// ErrValueWrongType - error you get when you ask for something, and it is not the type you expected
	ErrValueWrongType = errors.New("context value of wrong type")
)
