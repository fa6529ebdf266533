package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// MinLength is the shortest slug accepted by Validate.
	MinLength = 2
	// MaxLength is the longest slug accepted by Validate and produced by Make.
	MaxLength = 50
)

// Option configures the slug generation behavior.
type Option func(*config)

type config struct {
	maxLength int
	separator string
}

func defaultConfig() *config {
	return &config{
		maxLength: MaxLength,
		separator: "-",
	}
}

// WithMaxLength overrides the maximum slug length. Non-positive values disable truncation.
func WithMaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// WithSeparator sets the separator used for whitespace. Default is "-".
func WithSeparator(s string) Option {
	return func(c *config) {
		if s != "" {
			c.separator = s
		}
	}
}

// Make derives a slug from free text.
// Letters are lowercased and transliterated, whitespace and underscores become
// the separator, everything else outside [a-z0-9] is dropped. Repeated
// separators collapse and the result never starts or ends with one.
func Make(s string, opts ...Option) string {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	b.Grow(len(s))

	lastWasSep := true // avoids a leading separator
	for _, r := range strings.ToLower(s) {
		if repl, ok := transliterate(r); ok {
			b.WriteString(repl)
			lastWasSep = false
			continue
		}

		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastWasSep = false
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if !lastWasSep {
				b.WriteString(cfg.separator)
				lastWasSep = true
			}
		}
	}

	result := strings.Trim(b.String(), cfg.separator)
	if cfg.maxLength > 0 {
		result = truncate(result, cfg.maxLength, cfg.separator)
	}
	return result
}

// truncate cuts s to at most n runes and removes a dangling separator.
func truncate(s string, n int, sep string) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimRight(string(runes[:n]), sep)
}

// transliterationMap maps accented Latin letters to ASCII. Keys are lowercase
// because Make lowercases before lookup.
var transliterationMap = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a", 'ā': "a", 'ă': "a", 'ą': "a",
	'ç': "c", 'ć': "c", 'č': "c",
	'đ': "d", 'ď': "d", 'ð': "d",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e", 'ē': "e", 'ė': "e", 'ę': "e", 'ě': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i", 'ī': "i", 'į': "i", 'ı': "i",
	'ł': "l",
	'ñ': "n", 'ń': "n", 'ň': "n",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o", 'ø': "o", 'ō': "o", 'ő': "o",
	'ř': "r",
	'ś': "s", 'š': "s", 'ș': "s", 'ş': "s",
	'ť': "t", 'ț': "t", 'ţ': "t",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u", 'ū': "u", 'ů': "u", 'ų': "u", 'ű': "u",
	'ý': "y", 'ÿ': "y",
	'ź': "z", 'ž': "z", 'ż': "z",
	'æ': "ae",
	'œ': "oe",
	'ß': "ss",
	'þ': "th",
}

// transliterate returns the ASCII replacement for r. Runes missing from the
// map fall back to their NFD base letter when that base is ASCII.
func transliterate(r rune) (string, bool) {
	if repl, ok := transliterationMap[r]; ok {
		return repl, true
	}
	if r < unicode.MaxASCII {
		return "", false
	}
	decomposed := norm.NFD.String(string(r))
	var b strings.Builder
	for _, d := range decomposed {
		if unicode.Is(unicode.Mn, d) {
			continue
		}
		if (d >= 'a' && d <= 'z') || (d >= '0' && d <= '9') {
			b.WriteRune(d)
			continue
		}
		return "", false
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}
