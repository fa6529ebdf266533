package tenantstore

import "errors"

var (
	ErrSlugTaken     = errors.New("slug is already taken")
	ErrDomainTaken   = errors.New("domain is already taken")
	ErrInvalidFilter = errors.New("invalid tenant filter")
	ErrInvalidParams = errors.New("invalid tenant parameters")
)
