package slug

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// MaxAttempts bounds the numeric suffixes tried by GenerateUnique.
const MaxAttempts = 1000

var (
	// ErrEmptySlug is returned when the input text produces no slug characters.
	ErrEmptySlug = errors.New("slug: text produces an empty slug")

	// ErrSlugsExhausted is returned when every candidate up to MaxAttempts is taken.
	ErrSlugsExhausted = errors.New("slug: exhausted candidate slugs")
)

// ExistsFunc reports whether a slug is already in use.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// GenerateUnique derives a slug from text that is not in existing.
// Collisions are resolved by appending -1, -2, ... up to MaxAttempts.
// Reserved words count as taken.
func GenerateUnique(text string, existing []string) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}
	return GenerateUniqueFunc(context.Background(), text, func(_ context.Context, s string) (bool, error) {
		_, ok := taken[s]
		return ok, nil
	})
}

// GenerateUniqueFunc is GenerateUnique with a caller supplied existence check,
// typically backed by the tenant store.
func GenerateUniqueFunc(ctx context.Context, text string, exists ExistsFunc) (string, error) {
	base := Make(text)
	if base == "" {
		return "", ErrEmptySlug
	}

	for i := 0; i <= MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate := withSuffix(base, i)
		if IsReserved(candidate) || len(candidate) < MinLength {
			continue
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", ErrSlugsExhausted
}

// Suggest returns up to n free alternatives for slug, in suffix order.
func Suggest(slug string, existing []string, n int) []string {
	if n <= 0 || slug == "" {
		return nil
	}

	taken := make(map[string]struct{}, len(existing)+1)
	for _, s := range existing {
		taken[s] = struct{}{}
	}
	taken[slug] = struct{}{}

	suggestions := make([]string, 0, n)
	for i := 1; i <= MaxAttempts && len(suggestions) < n; i++ {
		candidate := withSuffix(slug, i)
		if _, ok := taken[candidate]; ok {
			continue
		}
		if !IsValid(candidate) {
			continue
		}
		suggestions = append(suggestions, candidate)
	}
	return suggestions
}

// withSuffix appends "-n" to base, shortening base so the result fits MaxLength.
// n == 0 returns base unchanged.
func withSuffix(base string, n int) string {
	if n == 0 {
		return base
	}
	suffix := "-" + strconv.Itoa(n)
	if len(base)+len(suffix) > MaxLength {
		base = strings.TrimRight(base[:MaxLength-len(suffix)], "-")
	}
	return base + suffix
}
