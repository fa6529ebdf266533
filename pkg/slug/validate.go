package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// pattern allows internal repeated hyphens ("ab--c" is a valid slug).
var pattern = regexp.MustCompile(`^(?:[a-z0-9][a-z0-9-]*[a-z0-9]|[a-z0-9])$`)

// reservedWords cannot be used as tenant slugs. They collide with routes,
// infrastructure hostnames or system tenants.
var reservedWords = map[string]struct{}{
	"about": {}, "account": {}, "accounts": {}, "admin": {}, "administrator": {},
	"api": {}, "app": {}, "apps": {}, "assets": {}, "auth": {},
	"billing": {}, "blog": {}, "cdn": {}, "config": {}, "contact": {},
	"dashboard": {}, "default": {}, "dev": {}, "docs": {}, "email": {},
	"files": {}, "ftp": {}, "health": {}, "help": {}, "imap": {},
	"internal": {}, "localhost": {}, "login": {}, "logout": {}, "mail": {},
	"media": {}, "metrics": {}, "null": {}, "pop": {}, "private": {},
	"prod": {}, "production": {}, "public": {}, "register": {}, "root": {},
	"security": {}, "settings": {}, "signin": {}, "signup": {}, "smtp": {},
	"staging": {}, "static": {}, "status": {}, "support": {}, "system": {},
	"tenant": {}, "tenants": {}, "test": {}, "undefined": {}, "upload": {},
	"uploads": {}, "www": {},
}

// IsReserved reports whether s is a reserved word. The check is case-insensitive.
func IsReserved(s string) bool {
	_, ok := reservedWords[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Validate checks s against the slug rules and returns every violation as a
// human-readable message. An empty result means the slug is valid.
func Validate(s string) []string {
	if s == "" {
		return []string{"slug is required"}
	}

	var errs []string
	n := utf8.RuneCountInString(s)
	if n < MinLength {
		errs = append(errs, fmt.Sprintf("slug must be at least %d characters long", MinLength))
	}
	if n > MaxLength {
		errs = append(errs, fmt.Sprintf("slug must be at most %d characters long", MaxLength))
	}
	if !pattern.MatchString(s) {
		errs = append(errs, "slug may only contain lowercase letters, numbers and hyphens, and must start and end with a letter or number")
	}
	if IsReserved(s) {
		errs = append(errs, fmt.Sprintf("slug %q is reserved", s))
	}
	return errs
}

// IsValid reports whether Validate finds no violations.
func IsValid(s string) bool {
	return len(Validate(s)) == 0
}
