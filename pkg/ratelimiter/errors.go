package ratelimiter

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid rate limit configuration")
	ErrStoreClosed   = errors.New("rate limit store is closed")
)
