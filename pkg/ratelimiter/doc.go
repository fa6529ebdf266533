// Package ratelimiter implements token bucket rate limiting for HTTP handlers.
//
// A Limiter applies one Config to many keys. State lives in a Store;
// MemoryStore keeps it in process and sweeps idle buckets in the background.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.New(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	r.With(ratelimiter.Middleware(limiter, func(r *http.Request) string {
//		return clientip.FromContext(r.Context())
//	})).Post("/api/contact", contact)
//
// Denied requests get 429 with Retry-After. Store errors let the request
// through unless WithErrorHandler says otherwise.
package ratelimiter
