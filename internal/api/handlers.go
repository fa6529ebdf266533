package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/logger"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/slug"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenant"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenantstore"
)

const suggestionCount = 3

type handlers struct {
	store  Store
	cache  tenant.Cache
	logger *slog.Logger
}

type identityResponse struct {
	TenantID string         `json:"tenant_id"`
	Source   tenant.Source  `json:"source"`
	Tenant   *tenant.Tenant `json:"tenant,omitempty"`
}

func (h *handlers) currentTenant(w http.ResponseWriter, r *http.Request) {
	id := tenant.MustFromContext(r.Context())
	writeJSON(w, http.StatusOK, identityResponse{TenantID: id.TenantID, Source: id.Source, Tenant: id.Tenant})
}

type contactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	TenantID string `json:"tenantId,omitempty"`
	Tenant   string `json:"tenant,omitempty"`
}

func (req contactRequest) validate() []string {
	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, "email is not a valid address")
	}
	if strings.TrimSpace(req.Message) == "" {
		errs = append(errs, "message is required")
	}
	return errs
}

// contact accepts a public form submission scoped to the resolved or default tenant.
func (h *handlers) contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errMalformedJSON.Error())
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "invalid contact request", errs...)
		return
	}

	id := tenant.MustFromContext(r.Context())
	h.logger.InfoContext(r.Context(), "contact request accepted", slog.Int("message_length", len(req.Message)))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "tenant_id": id.TenantID})
}

type createTenantRequest struct {
	Name   string `json:"name"`
	Slug   string `json:"slug,omitempty"`
	Domain string `json:"domain,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

func (h *handlers) createTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createTenantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errMalformedJSON.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid tenant", "name is required")
		return
	}

	var details []string
	if req.Slug != "" {
		details = append(details, slug.Validate(req.Slug)...)
	}
	if req.Domain != "" {
		details = append(details, tenant.ValidateDomain(req.Domain)...)
	}
	if len(details) > 0 {
		writeError(w, http.StatusBadRequest, "invalid tenant", details...)
		return
	}

	s := req.Slug
	if s == "" {
		generated, err := slug.GenerateUniqueFunc(ctx, req.Name, h.store.SlugExists)
		if err != nil {
			if errors.Is(err, slug.ErrEmptySlug) {
				writeError(w, http.StatusBadRequest, "invalid tenant", "name produces an empty slug, provide a slug")
				return
			}
			h.internalError(w, r, "failed to generate slug", err)
			return
		}
		s = generated
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	t, err := h.store.Create(ctx, tenantstore.CreateParams{Name: req.Name, Slug: s, Domain: req.Domain, Active: active})
	switch {
	case errors.Is(err, tenantstore.ErrSlugTaken):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:       err.Error(),
			Suggestions: h.suggest(r, s),
		})
		return
	case errors.Is(err, tenantstore.ErrDomainTaken):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.internalError(w, r, "failed to create tenant", err)
		return
	}

	h.logger.InfoContext(ctx, "tenant created", logger.TenantID(t.ID), logger.Slug(t.Slug))
	writeJSON(w, http.StatusCreated, t)
}

func (h *handlers) listTenants(w http.ResponseWriter, r *http.Request) {
	f, errs := parseFilter(r)
	if len(errs) == 0 {
		if err := f.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "invalid filter", errs...)
		return
	}

	tenants, err := h.store.List(r.Context(), f)
	if err != nil {
		h.internalError(w, r, "failed to list tenants", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenants": tenants})
}

func parseFilter(r *http.Request) (tenantstore.Filter, []string) {
	q := r.URL.Query()
	var (
		f    tenantstore.Filter
		errs []string
	)

	if v := q.Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, "active must be a boolean")
		} else {
			f.Active = &b
		}
	}
	if v := q.Get("include_deleted"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, "include_deleted must be a boolean")
		}
		f.IncludeDeleted = b
	}
	if v := q.Get("created_after"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errs = append(errs, "created_after must be an RFC 3339 timestamp")
		}
		f.CreatedAfter = ts
	}
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, name+" must be an integer")
			}
			*dst = n
		}
	}
	f.SlugPrefix = q.Get("prefix")
	return f, errs
}

func (h *handlers) deleteTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t, err := h.store.SoftDelete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			writeError(w, http.StatusNotFound, tenant.ErrTenantNotFound.Error())
			return
		}
		h.internalError(w, r, "failed to delete tenant", err)
		return
	}

	if err := tenant.Invalidate(ctx, h.cache, t); err != nil {
		h.logger.WarnContext(ctx, "failed to invalidate tenant cache", logger.TenantID(t.ID), logger.Error(err))
	}
	h.logger.InfoContext(ctx, "tenant deleted", logger.TenantID(t.ID), logger.Slug(t.Slug))
	w.WriteHeader(http.StatusNoContent)
}

type slugCheckResponse struct {
	Slug        string   `json:"slug"`
	Valid       bool     `json:"valid"`
	Available   bool     `json:"available"`
	Errors      []string `json:"errors,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (h *handlers) checkSlug(w http.ResponseWriter, r *http.Request) {
	s := r.URL.Query().Get("slug")
	resp := slugCheckResponse{Slug: s, Errors: slug.Validate(s)}
	resp.Valid = len(resp.Errors) == 0

	if !resp.Valid {
		if made := slug.Make(s); made != "" && made != s {
			resp.Suggestions = []string{made}
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	taken, err := h.store.SlugExists(r.Context(), s)
	if err != nil {
		h.internalError(w, r, "failed to check slug", err)
		return
	}
	resp.Available = !taken
	if taken {
		resp.Suggestions = h.suggest(r, s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// suggest lists free alternatives for a taken slug. Failures yield none.
func (h *handlers) suggest(r *http.Request, s string) []string {
	live, err := h.store.List(r.Context(), tenantstore.Filter{SlugPrefix: s, Limit: tenantstore.MaxListLimit})
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to load slugs for suggestions", logger.Error(err))
		return nil
	}
	existing := make([]string, 0, len(live))
	for _, t := range live {
		existing = append(existing, t.Slug)
	}
	return slug.Suggest(s, existing, suggestionCount)
}

func (h *handlers) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
