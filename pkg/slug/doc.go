// Package slug generates and validates tenant slugs.
//
// A slug is the short, URL-safe identifier a tenant is addressed by in
// subdomains and the X-Tenant-Slug header. The package covers the three
// operations the rest of the module needs:
//
//   - Make turns free text (usually an organization name) into a slug:
//     lowercase, accented Latin letters transliterated to ASCII, whitespace
//     turned into hyphens, all other punctuation dropped, at most 50 characters.
//   - Validate checks a slug against the format rules and the reserved-word
//     list and returns every violation as a readable message.
//   - GenerateUnique and GenerateUniqueFunc append -1, -2, ... until the slug is
//     free. The search is capped at MaxAttempts and fails with ErrSlugsExhausted.
//
// # Usage
//
//	s := slug.Make("Società Élite S.r.l.")
//	// s == "societa-elite-srl"
//
//	if errs := slug.Validate("admin"); len(errs) > 0 {
//		// "slug \"admin\" is reserved"
//	}
//
//	s, err := slug.GenerateUnique("Acme", []string{"acme"})
//	// s == "acme-1"
//
// # Format
//
// Valid slugs are 2 to 50 characters long and match
// ^[a-z0-9][a-z0-9-]*[a-z0-9]$. Repeated internal hyphens ("ab--c") are
// accepted by Validate even though Make never produces them.
//
// All functions are safe for concurrent use.
package slug
