package tenantstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/pg"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenant"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const columns = `id, slug, name, coalesce(domain, ''), is_active, deleted_at, created_at`

// Store keeps tenants in PostgreSQL. It implements tenant.Provider.
type Store struct {
	db  DB
	now func() time.Time
}

var _ tenant.Provider = (*Store)(nil)

// New creates a store on db, usually a *pgxpool.Pool shared for the process lifetime.
func New(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

// CreateParams describes a new tenant. Slug and Domain must already be
// validated; Domain may be empty.
type CreateParams struct {
	Name   string
	Slug   string
	Domain string
	Active bool
}

// Create inserts a tenant with a fresh UUID.
// A live tenant holding the same slug or domain yields ErrSlugTaken or ErrDomainTaken.
func (s *Store) Create(ctx context.Context, p CreateParams) (*tenant.Tenant, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" || p.Slug == "" {
		return nil, fmt.Errorf("%w: name and slug are required", ErrInvalidParams)
	}

	var domain *string
	if d := strings.ToLower(strings.TrimSpace(p.Domain)); d != "" {
		domain = &d
	}

	row := s.db.QueryRow(ctx,
		`INSERT INTO tenants (id, slug, name, domain, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+columns,
		uuid.New(), p.Slug, name, domain, p.Active, s.now().UTC(),
	)
	t, err := scanTenant(row)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			if strings.Contains(pg.ConstraintName(err), "domain") {
				return nil, ErrDomainTaken
			}
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create tenant %q: %w", p.Slug, err)
	}
	return t, nil
}

// GetByID returns any tenant with the id, deleted or not. Ids that are not
// UUIDs cannot exist and yield tenant.ErrTenantNotFound without a query.
func (s *Store) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, tenant.ErrTenantNotFound
	}
	return s.one(ctx, "get tenant by id", `SELECT `+columns+` FROM tenants WHERE id = $1`, uid)
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return s.one(ctx, "get tenant by slug",
		`SELECT `+columns+` FROM tenants WHERE slug = $1 AND deleted_at IS NULL`, slug)
}

func (s *Store) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return s.one(ctx, "get tenant by domain",
		`SELECT `+columns+` FROM tenants WHERE lower(domain) = lower($1) AND deleted_at IS NULL`, domain)
}

// OldestActive returns the earliest created active, live tenant.
func (s *Store) OldestActive(ctx context.Context) (*tenant.Tenant, error) {
	return s.one(ctx, "get oldest active tenant",
		`SELECT `+columns+` FROM tenants
		 WHERE is_active AND deleted_at IS NULL
		 ORDER BY created_at ASC, id ASC
		 LIMIT 1`)
}

// SlugExists reports whether a live tenant holds slug.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE slug = $1 AND deleted_at IS NULL)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return exists, nil
}

// SoftDelete marks the tenant deleted and returns its final state, so the
// caller can invalidate caches. Deleting a deleted tenant is not found.
func (s *Store) SoftDelete(ctx context.Context, id string) (*tenant.Tenant, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, tenant.ErrTenantNotFound
	}
	return s.one(ctx, "delete tenant",
		`UPDATE tenants SET deleted_at = $2, updated_at = $2
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+columns,
		uid, s.now().UTC())
}

// List returns tenants matching f, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]*tenant.Tenant, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	where, page, args := f.Build()

	rows, err := s.db.Query(ctx,
		`SELECT `+columns+` FROM tenants `+where+` ORDER BY created_at DESC, id DESC `+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]*tenant.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

func (s *Store) one(ctx context.Context, op, query string, args ...any) (*tenant.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var (
		t  tenant.Tenant
		id uuid.UUID
	)
	if err := row.Scan(&id, &t.Slug, &t.Name, &t.Domain, &t.Active, &t.DeletedAt, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.ID = id.String()
	return &t, nil
}

// ErrorIsConflict reports whether err is a slug or domain conflict from Create.
func ErrorIsConflict(err error) bool {
	return errors.Is(err, ErrSlugTaken) || errors.Is(err, ErrDomainTaken)
}
