// Package api wires the tenant resolver into the service's HTTP surface.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/clientip"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/environment"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/httpserver"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/ratelimiter"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/requestid"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenant"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenantstore"
)

// Store is what the handlers need from the tenant store.
type Store interface {
	tenant.Provider
	Create(ctx context.Context, p tenantstore.CreateParams) (*tenant.Tenant, error)
	SoftDelete(ctx context.Context, id string) (*tenant.Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, f tenantstore.Filter) ([]*tenant.Tenant, error)
}

// Deps are the collaborators of the router. Store and Resolver are required.
type Deps struct {
	Store          Store
	Resolver       *tenant.Resolver
	Cache          tenant.Cache
	CacheTTL       time.Duration
	VerifyHeaderID bool
	Logger         *slog.Logger
	Metrics        *tenant.Metrics
	Gatherer       prometheus.Gatherer
	Checks         []httpserver.Check
	Env            environment.Environment

	// ContactLimiter throttles the contact form per tenant and client address.
	// Nil disables throttling.
	ContactLimiter *ratelimiter.Limiter
	// ClientIPHeaders overrides clientip.DefaultHeaders.
	ClientIPHeaders []string
}

// NewRouter builds the chi router.
//
//	GET    /healthz, /readyz, /metrics
//	GET    /api/tenant                 tenant required
//	POST   /api/contact                default tenant fallback
//	POST   /api/admin/tenants
//	GET    /api/admin/tenants
//	DELETE /api/admin/tenants/{id}
//	GET    /api/admin/slugs/check?slug=
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Cache == nil {
		d.Cache = tenant.NewNoOpCache()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	h := &handlers{store: d.Store, cache: d.Cache, logger: d.Logger}

	tenantOpts := []tenant.Option{
		tenant.WithCache(d.Cache),
		tenant.WithCacheTTL(d.CacheTTL),
		tenant.WithLogger(d.Logger),
		tenant.WithMetrics(d.Metrics),
		tenant.WithVerifyHeaderID(d.VerifyHeaderID),
	}
	scoped := tenant.Middleware(d.Resolver, d.Store, tenantOpts...)
	public := tenant.Middleware(d.Resolver, d.Store, append(tenantOpts, tenant.WithDefaultFallback())...)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		requestid.Middleware,
		clientip.Middleware(d.ClientIPHeaders...),
		environment.Middleware(d.Env),
		accessLog(d.Logger),
	)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(d.Logger, 2*time.Second, d.Checks...))
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.With(scoped, tenant.RequireTenant(nil)).Get("/tenant", h.currentTenant)
		r.With(public, contactLimit(d.ContactLimiter)).Post("/contact", h.contact)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/tenants", h.createTenant)
			r.Get("/tenants", h.listTenants)
			r.Delete("/tenants/{id}", h.deleteTenant)
			r.Get("/slugs/check", h.checkSlug)
		})
	})

	return r
}

// contactLimit keys buckets by tenant id and client address.
func contactLimit(l *ratelimiter.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	key := func(r *http.Request) string {
		ip := clientip.FromContext(r.Context())
		id, ok := tenant.IDFromContext(r.Context())
		if ip == "" || !ok {
			return ""
		}
		return "contact:" + id + ":" + ip
	}
	denied := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
	})
	return ratelimiter.Middleware(l, key, ratelimiter.WithDeniedHandler(denied))
}

// accessLog logs one line per request after it completes.
func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
