package tenant

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// DefaultCacheTTL is how long resolved tenants stay cached unless WithCacheTTL says otherwise.
const DefaultCacheTTL = 5 * time.Minute

// ErrorHandler handles errors that occur during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds middleware configuration.
type config struct {
	cache          Cache
	cacheTTL       time.Duration
	errorHandler   ErrorHandler
	skipPaths      []string
	logger         *slog.Logger
	metrics        *Metrics
	fallback       bool
	verifyHeaderID bool
}

// Option configures the middleware.
type Option func(*config)

// WithCache sets a cache implementation. Without it nothing is cached.
func WithCache(cache Cache) Option {
	return func(c *config) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithCacheTTL sets how long looked up tenants stay in the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution.
func WithSkipPaths(paths []string) Option {
	return func(c *config) {
		c.skipPaths = paths
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records lookup outcomes and durations.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithDefaultFallback scopes requests without any tenant signal to the oldest
// active tenant. Meant for public endpoints such as contact forms.
func WithDefaultFallback() Option {
	return func(c *config) {
		c.fallback = true
	}
}

// WithVerifyHeaderID makes the middleware load the tenant named by the
// X-Tenant-ID header instead of trusting the gateway blindly.
func WithVerifyHeaderID(verify bool) Option {
	return func(c *config) {
		c.verifyHeaderID = verify
	}
}

// errorBody is the JSON payload written by the default error handler.
type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// StatusCode maps a resolution error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrTenantRequired), errors.Is(err, ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, ErrInactiveTenant):
		return http.StatusForbidden
	case errors.Is(err, ErrTenantNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// DefaultErrorHandler writes the error as JSON with the status from StatusCode.
// Validation errors list every violation under "details". Wrapped error text
// is never echoed to the client.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	var body errorBody

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		body.Error = ErrInvalidIdentifier.Error()
		body.Details = verr.Errors
	case errors.Is(err, ErrTenantRequired):
		body.Error = ErrTenantRequired.Error()
	case errors.Is(err, ErrInvalidIdentifier):
		body.Error = ErrInvalidIdentifier.Error()
	case status == http.StatusForbidden:
		body.Error = ErrInactiveTenant.Error()
	case status == http.StatusNotFound:
		body.Error = ErrTenantNotFound.Error()
	default:
		body.Error = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeFound
	case errors.Is(err, ErrNoActiveTenant):
		return outcomeNoDefault
	case errors.Is(err, ErrInvalidIdentifier):
		return outcomeInvalid
	case errors.Is(err, ErrInactiveTenant):
		return outcomeInactive
	case errors.Is(err, ErrTenantNotFound):
		return outcomeNotFound
	default:
		return outcomeError
	}
}
