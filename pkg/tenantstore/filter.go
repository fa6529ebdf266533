package tenantstore

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// prefixPattern keeps LIKE wildcards out of slug prefixes.
var prefixPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Filter narrows List results. The zero value lists live tenants, newest first.
type Filter struct {
	Active         *bool
	IncludeDeleted bool
	SlugPrefix     string
	CreatedAfter   time.Time
	Limit          int
	Offset         int
}

// Validate reports the first invalid field.
func (f Filter) Validate() error {
	if f.Limit < 0 || f.Limit > MaxListLimit {
		return fmt.Errorf("%w: limit must be between 0 and %d", ErrInvalidFilter, MaxListLimit)
	}
	if f.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrInvalidFilter)
	}
	if f.SlugPrefix != "" && !prefixPattern.MatchString(f.SlugPrefix) {
		return fmt.Errorf("%w: slug prefix may only contain lowercase letters, numbers and hyphens", ErrInvalidFilter)
	}
	return nil
}

// Build returns the WHERE clause (possibly empty), the LIMIT/OFFSET tail and
// the positional arguments for both.
func (f Filter) Build() (where, page string, args []any) {
	var conds []string
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if f.Active != nil {
		conds = append(conds, "is_active = "+arg(*f.Active))
	}
	if f.SlugPrefix != "" {
		conds = append(conds, "slug LIKE "+arg(f.SlugPrefix+"%"))
	}
	if !f.CreatedAfter.IsZero() {
		conds = append(conds, "created_at > "+arg(f.CreatedAfter))
	}
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	limit := f.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	page = "LIMIT " + arg(limit) + " OFFSET " + arg(f.Offset)
	return where, page, args
}
