package logo_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStop = errors.New("stop")

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, level+": "+msg)
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.log("debug", msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.log("info", msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.log("warn", msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.log("error", msg) }

func TestInterceptorChain_Order(t *testing.T) {
	t.Parallel()

	var order []string

	chain := logo.NewInterceptorChain().
		AddRequestInterceptor(func(ctx context.Context, req *logo.Request) error {
			order = append(order, "request 1")

			return nil
		}).
		AddRequestInterceptor(func(ctx context.Context, req *logo.Request) error {
			order = append(order, "request 2")

			return nil
		}).
		AddResponseInterceptor(func(ctx context.Context, req *logo.Request, resp *logo.Response) error {
			order = append(order, "response 1")

			return nil
		})

	req := &logo.Request{Method: "GET", Path: "/api/v1/items"}

	require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), req))
	require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), req, &logo.Response{StatusCode: 200}))
	assert.Equal(t, []string{"request 1", "request 2", "response 1"}, order)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	called := false

	chain := logo.NewInterceptorChain().
		AddRequestInterceptor(func(ctx context.Context, req *logo.Request) error { return errStop }).
		AddRequestInterceptor(func(ctx context.Context, req *logo.Request) error {
			called = true

			return nil
		})

	err := chain.ExecuteRequestInterceptors(context.Background(), &logo.Request{})
	require.ErrorIs(t, err, errStop)
	assert.False(t, called)
}

func TestInterceptorChain_Nil(t *testing.T) {
	t.Parallel()

	var chain *logo.InterceptorChain

	require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), &logo.Request{}))
	require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), &logo.Request{}, &logo.Response{}))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	req := &logo.Request{Method: "GET", Path: "/api/v1/items"}

	require.NoError(t, logo.LoggingInterceptor(logger)(context.Background(), req))
	require.NoError(t, logo.LoggingResponseInterceptor(logger)(context.Background(), req, &logo.Response{StatusCode: 200}))
	require.NoError(t, logo.LoggingResponseInterceptor(logger)(context.Background(), req, &logo.Response{StatusCode: 404}))

	assert.Equal(t, []string{"debug: API Request", "debug: API Response", "error: API Response Error"}, logger.entries)
}

func TestHeaderAndFirmInterceptors(t *testing.T) {
	t.Parallel()

	req := &logo.Request{}

	require.NoError(t, logo.HeaderInterceptor(map[string]string{"X-Trace": "abc"})(context.Background(), req))
	require.NoError(t, logo.FirmInterceptor(125)(context.Background(), req))

	assert.Equal(t, "abc", req.Headers.Get("X-Trace"))
	assert.Equal(t, "125", req.Headers.Get("X-Logo-Firm"))
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	limiter := logo.NewRateLimiter(2)
	defer limiter.Stop()

	interceptor := logo.RateLimitInterceptor(limiter)

	require.NoError(t, interceptor(context.Background(), &logo.Request{}))
	require.NoError(t, interceptor(context.Background(), &logo.Request{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := interceptor(ctx, &logo.Request{})
	require.ErrorIs(t, err, logo.ErrRateLimitExceeded)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	limiter.Stop()
}

func TestMetricsInterceptors(t *testing.T) {
	t.Parallel()

	collector := logo.NewMetricsCollector()

	var changes int

	collector.SetOnChange(func(endpoint string, metrics logo.Metrics) {
		changes++
	})

	requestInterceptor := logo.MetricsRequestInterceptor(collector)
	responseInterceptor := logo.MetricsResponseInterceptor(collector)

	for _, status := range []int{http.StatusOK, http.StatusInternalServerError} {
		req := &logo.Request{Method: "GET", Path: "/api/v1/items?limit=10"}

		require.NoError(t, requestInterceptor(context.Background(), req))
		require.NoError(t, responseInterceptor(context.Background(), req, &logo.Response{StatusCode: status}))
	}

	metrics := collector.GetMetrics("GET /api/v1/items")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.False(t, metrics.LastRequestTime.IsZero())
	assert.Equal(t, 2, changes)
	assert.Equal(t, []string{"GET /api/v1/items"}, collector.Endpoints())
	assert.Nil(t, collector.GetMetrics("GET /api/v1/Arps"))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	breaker := logo.NewCircuitBreaker(&logo.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          20 * time.Millisecond,
		SuccessThreshold: 1,
	})

	before := logo.CircuitBreakerRequestInterceptor(breaker)
	after := logo.CircuitBreakerResponseInterceptor(breaker)
	ctx := context.Background()
	req := &logo.Request{Method: "GET", Path: "/api/v1/items"}

	// Client errors do not count.
	for range 3 {
		require.NoError(t, before(ctx, req))
		require.NoError(t, after(ctx, req, &logo.Response{StatusCode: http.StatusNotFound, Error: errStop}))
	}

	assert.Equal(t, constants.StatusClosed, breaker.State())

	for range 2 {
		require.NoError(t, before(ctx, req))
		require.NoError(t, after(ctx, req, &logo.Response{StatusCode: http.StatusServiceUnavailable}))
	}

	assert.Equal(t, constants.StatusOpen, breaker.State())
	require.ErrorIs(t, before(ctx, req), logo.ErrCircuitBreakerOpen)

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, before(ctx, req))
	assert.Equal(t, constants.StatusHalfOpen, breaker.State())

	require.NoError(t, after(ctx, req, &logo.Response{StatusCode: http.StatusOK}))
	assert.Equal(t, constants.StatusClosed, breaker.State())

	// A transport error also counts as a failure.
	require.NoError(t, after(ctx, req, &logo.Response{Error: errStop}))
	require.NoError(t, after(ctx, req, &logo.Response{Error: errStop}))
	assert.Equal(t, constants.StatusOpen, breaker.State())
}
