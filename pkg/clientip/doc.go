// Package clientip extracts the originating client address from requests
// that arrive through reverse proxies.
//
// FromRequest checks the configured headers in order (CF-Connecting-IP,
// X-Forwarded-For, X-Real-IP by default) and falls back to RemoteAddr. Lists
// yield their first valid address. Invalid values are skipped, and an empty
// string means no address was found.
//
// Middleware stores the address in the request context, where FromContext,
// the contact form rate limiter and LoggerExtractor pick it up.
//
//	r.Use(clientip.Middleware())
//	log := logger.New(logger.WithContextExtractors(clientip.LoggerExtractor()))
package clientip
