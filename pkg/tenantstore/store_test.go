package tenantstore_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenant"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenantstore"
)

// fakeRow scans fixed values, or fails with err.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, v := range r.values {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

// fakeDB answers every QueryRow with row and records the calls.
type fakeDB struct {
	row     fakeRow
	queries []string
	args    [][]any
}

func (db *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func (db *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	return db.row
}

func tenantRow(id uuid.UUID, slug string, active bool) fakeRow {
	return fakeRow{values: []any{
		id, slug, "Acme Corp", "acme-training.it", active, (*time.Time)(nil),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}}
}

func TestStore_GetByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	id := uuid.New()

	t.Run("scans the row", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{row: tenantRow(id, "acme", true)}
		got, err := tenantstore.New(db).GetByID(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, id.String(), got.ID)
		assert.Equal(t, "acme", got.Slug)
		assert.Equal(t, "acme-training.it", got.Domain)
		assert.True(t, got.Usable())
	})

	t.Run("non uuid never reaches the database", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		_, err := tenantstore.New(db).GetByID(ctx, "T1")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
		assert.Empty(t, db.queries)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
		_, err := tenantstore.New(db).GetByID(ctx, id.String())
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("driver errors are wrapped", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("conn closed")
		db := &fakeDB{row: fakeRow{err: boom}}
		_, err := tenantstore.New(db).GetByID(ctx, id.String())
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, tenant.ErrTenantNotFound)
	})
}

func TestStore_Lookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := &fakeDB{row: tenantRow(uuid.New(), "acme", true)}
	store := tenantstore.New(db)

	_, err := store.GetBySlug(ctx, "acme")
	require.NoError(t, err)
	_, err = store.GetByDomain(ctx, "acme-training.it")
	require.NoError(t, err)
	_, err = store.OldestActive(ctx)
	require.NoError(t, err)

	require.Len(t, db.queries, 3)
	assert.Contains(t, db.queries[0], "slug = $1 AND deleted_at IS NULL")
	assert.Contains(t, db.queries[1], "lower(domain) = lower($1) AND deleted_at IS NULL")
	assert.Contains(t, db.queries[2], "ORDER BY created_at ASC")
	assert.Contains(t, db.queries[2], "is_active AND deleted_at IS NULL")
}

func TestStore_Create(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("inserts lower cased domain", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{row: tenantRow(uuid.New(), "acme", true)}
		got, err := tenantstore.New(db).Create(ctx, tenantstore.CreateParams{
			Name: " Acme Corp ", Slug: "acme", Domain: "ACME-Training.it", Active: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "acme", got.Slug)

		args := db.args[0]
		assert.Equal(t, "acme", args[1])
		assert.Equal(t, "Acme Corp", args[2])
		domain, ok := args[3].(*string)
		require.True(t, ok)
		assert.Equal(t, "acme-training.it", *domain)
	})

	t.Run("empty domain is null", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{row: tenantRow(uuid.New(), "acme", true)}
		_, err := tenantstore.New(db).Create(ctx, tenantstore.CreateParams{Name: "Acme", Slug: "acme"})
		require.NoError(t, err)
		assert.Nil(t, db.args[0][3])
	})

	t.Run("slug conflict", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{row: fakeRow{err: &pgconn.PgError{Code: "23505", ConstraintName: "tenants_slug_live_key"}}}
		_, err := tenantstore.New(db).Create(ctx, tenantstore.CreateParams{Name: "Acme", Slug: "acme"})
		assert.ErrorIs(t, err, tenantstore.ErrSlugTaken)
		assert.True(t, tenantstore.ErrorIsConflict(err))
	})

	t.Run("domain conflict", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{row: fakeRow{err: &pgconn.PgError{Code: "23505", ConstraintName: "tenants_domain_live_key"}}}
		_, err := tenantstore.New(db).Create(ctx, tenantstore.CreateParams{Name: "Acme", Slug: "acme", Domain: "acme.it"})
		assert.ErrorIs(t, err, tenantstore.ErrDomainTaken)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		_, err := tenantstore.New(db).Create(ctx, tenantstore.CreateParams{Name: "  ", Slug: "acme"})
		assert.ErrorIs(t, err, tenantstore.ErrInvalidParams)
		assert.Empty(t, db.queries)
	})
}

func TestStore_SoftDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	_, err := tenantstore.New(db).SoftDelete(ctx, uuid.NewString())
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	assert.Contains(t, db.queries[0], "deleted_at IS NULL")

	_, err = tenantstore.New(&fakeDB{}).SoftDelete(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
}

func TestStore_SlugExists(t *testing.T) {
	t.Parallel()

	exists, err := tenantstore.New(&fakeDB{row: fakeRow{values: []any{true}}}).SlugExists(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStore_ListRejectsInvalidFilter(t *testing.T) {
	t.Parallel()

	_, err := tenantstore.New(&fakeDB{}).List(context.Background(), tenantstore.Filter{Limit: -1})
	assert.ErrorIs(t, err, tenantstore.ErrInvalidFilter)
}
