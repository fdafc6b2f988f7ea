package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for longer operations.
	ExtendedHTTPTimeout = 45 * time.Second

	// ShortHTTPTimeout is used for quick operations such as token requests.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 5

	// LowRetryMax is used for operations that should retry fewer times.
	LowRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// HTTP status codes commonly used.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusBadRequest represents a client error.
	HTTPStatusBadRequest = 400

	// HTTPStatusInternalServerError represents server errors.
	HTTPStatusInternalServerError = 500
)

// Service paths.
const (
	// APIBasePath prefixes every resource path.
	APIBasePath = "/api/v1"

	// TokenPath is the password/refresh grant endpoint.
	TokenPath = "/api/v1/token"

	// DefaultClientID is the client ID sent when none is configured.
	DefaultClientID = "logo-objects-client"
)

// Resource names.
const (
	ResourceItems         = "items"
	ResourceVariants      = "variants"
	ResourceOpportunities = "opportunities"
	ResourceArps          = "Arps"
	ResourceSalesOrders   = "salesOrders"
)

// Pagination and display limits.
const (
	// DefaultPageSize is the default number of records per page.
	DefaultPageSize = 50

	// LargePageSize is used when fetching every page.
	LargePageSize = 100

	// MaxPages bounds how many pages FetchAll follows by default.
	MaxPages = 50
)

// Batch execution.
const (
	// DefaultBatchConcurrency is how many batch operations run at once.
	DefaultBatchConcurrency = 5
)

// Token handling.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second
)

// Cache settings.
const (
	// DefaultCacheSize is the default maximum number of memory cache entries.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default time to live for cached responses.
	DefaultCacheTTL = 5 * time.Minute

	// CacheMinTTL is the shortest TTL a cache entry is stored with.
	CacheMinTTL = 30 * time.Second

	// MaxCacheValueSize is the largest response body stored in a cache.
	MaxCacheValueSize = 1024 * 1024

	// DefaultNATSBucket is the JetStream key-value bucket used for caching.
	DefaultNATSBucket = "logo-objects-cache"
)

// Output formats.
const (
	// FormatTable renders tables.
	FormatTable = "table"

	// FormatJSON renders JSON.
	FormatJSON = "json"

	// FormatYAML renders YAML.
	FormatYAML = "yaml"
)

// Display values.
const (
	// NotAvailable is printed for missing values.
	NotAvailable = "N/A"

	// MaskedSecret replaces secrets in output.
	MaskedSecret = "***"

	// JSONIndentSize is the indent used for JSON output.
	JSONIndentSize = 2

	// MinimumArgumentCount is the argument count of KEY VALUE commands.
	MinimumArgumentCount = 2
)

// Circuit breaker settings.
const (
	// CircuitBreakerThreshold is the number of failures before the circuit opens.
	CircuitBreakerThreshold = 5

	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout = 60 * time.Second

	// CircuitBreakerSuccessThreshold is the number of successes that close a half-open circuit.
	CircuitBreakerSuccessThreshold = 2

	// StatusClosed lets requests through.
	StatusClosed = "closed"

	// StatusOpen rejects requests.
	StatusOpen = "open"

	// StatusHalfOpen lets trial requests through.
	StatusHalfOpen = "half-open"
)
