package logo

import (
	"context"
	"time"
)

// EntityClient is the set of operations every Logo Objects resource supports.
// Records are addressed by their INTERNAL_REFERENCE.
type EntityClient[T any] interface {
	GetAll(ctx context.Context, opts *QueryOptions) (*ListResponse[T], error)
	Get(ctx context.Context, ref int) (*T, error)
	Create(ctx context.Context, record *T) (*T, error)
	Update(ctx context.Context, ref int, record *T) (*T, error)
	Patch(ctx context.Context, ref int, fields map[string]interface{}) (*T, error)
	Delete(ctx context.Context, ref int) error

	// Search compiles criteria into q. Criteria with no usable field send no q.
	Search(ctx context.Context, criteria *Criteria, opts *QueryOptions) (*ListResponse[T], error)
	// SearchByCode lists records whose CODE starts with code.
	SearchByCode(ctx context.Context, code string, opts *QueryOptions) (*ListResponse[T], error)
	// SearchByName lists records whose NAME starts with name.
	SearchByName(ctx context.Context, name string, opts *QueryOptions) (*ListResponse[T], error)
	// BuildQuery joins preformatted conditions with " and " and lists the matches.
	BuildQuery(ctx context.Context, conditions []string, opts *QueryOptions) (*ListResponse[T], error)
	// Count returns the number of records matching criteria.
	Count(ctx context.Context, criteria *Criteria) (int, error)
	// Invoke posts body to a custom action endpoint of the resource.
	Invoke(ctx context.Context, action string, body interface{}) (*ActionResult, error)
}

// ItemsClient manages material cards.
type ItemsClient interface {
	EntityClient[Item]
}

// VariantsClient manages item variants.
type VariantsClient interface {
	EntityClient[Variant]
	ListForItem(ctx context.Context, itemRef int, opts *QueryOptions) (*VariantList, error)
}

// OpportunitiesClient manages CRM opportunities.
type OpportunitiesClient interface {
	EntityClient[Opportunity]
	ConvertToOrder(ctx context.Context, ref int) (*ActionResult, error)
}

// ArpsClient manages current accounts.
type ArpsClient interface {
	EntityClient[Arp]
}

// SalesOrdersClient manages sales orders.
type SalesOrdersClient interface {
	EntityClient[SalesOrder]
}

// Client gives access to the resource clients.
type Client interface {
	Items() ItemsClient
	Variants() VariantsClient
	Opportunities() OpportunitiesClient
	Arps() ArpsClient
	SalesOrders() SalesOrdersClient

	// GetToken returns the current access token.
	GetToken(ctx context.Context) (string, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a logo.Client.
//
// # Authentication precedence
//
//  1. AccessToken: used directly as a static Bearer token. With
//     Username/Password as well, a 401 switches to the password grant.
//  2. Username/Password: password grant against TokenURL, scoped to FirmNo.
//  3. ClientID/ClientSecret without a user: client_credentials grant.
//  4. No credentials: requests are sent without authentication.
//
// TokenURL defaults to BaseURL + "/api/v1/token".
type Config struct {
	// BaseURL of the service, e.g. "https://erp.example.com". A missing scheme
	// gets "https://"; a trailing slash is trimmed.
	BaseURL string

	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// FirmNo selects the company the session works in.
	FirmNo       int
	RefreshToken string
	AccessToken  string
	TokenURL     string

	// HTTPTimeout bounds a single attempt. Zero uses the default.
	HTTPTimeout time.Duration
	// RetryMax is the number of retries for 5xx, 429 and connection errors.
	// Zero uses the default.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Debug logs every request and response through Logger.
	Debug     bool
	Logger    Logger
	UserAgent string

	// Cache enables response caching for GET requests.
	Cache *CacheConfig
	// Interceptors run around every request.
	Interceptors *InterceptorChain
}
