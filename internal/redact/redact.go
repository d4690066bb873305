package redact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const placeholder = "[REDACTED]"

// MaxBodyLen bounds upstream response bodies kept in log and error text.
const MaxBodyLen = 512

// secretPatterns are regex heuristics for common secret types.
var secretPatterns = []*regexp.Regexp{
	// API key headers and assignments
	regexp.MustCompile(`(?i)(x-api-key|api[_-]?key|apikey)(["']?\s*[:=]\s*["']?)([^\s"',}]{8,})`),
	// CurseForge keys are bcrypt-shaped
	regexp.MustCompile(`\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// Modrinth personal access tokens
	regexp.MustCompile(`mrp_[A-Za-z0-9]{20,}`),
	// Generic long hex strings that look like secrets (32+ chars in an assignment)
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
}

// Secrets replaces detected secrets in text with [REDACTED]. For key/value
// shapes the name is kept and only the value is replaced.
func Secrets(text string) string {
	result := text
	for i, pat := range secretPatterns {
		if i == 0 {
			result = pat.ReplaceAllString(result, "${1}${2}"+placeholder)
			continue
		}
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}

// Values replaces every occurrence of the given literal secrets in text.
// Empty values are ignored.
func Values(text string, secrets ...string) string {
	for _, s := range secrets {
		if s == "" {
			continue
		}
		text = strings.ReplaceAll(text, s, placeholder)
	}
	return text
}

// Body prepares an upstream response body for logging: known secrets and
// secret-shaped values are removed and the result is truncated to
// MaxBodyLen bytes on a rune boundary.
func Body(body string, secrets ...string) string {
	body = Secrets(Values(body, secrets...))
	if len(body) <= MaxBodyLen {
		return body
	}
	cut := MaxBodyLen
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "...(truncated)"
}

// Mask shows only whether a secret is set, plus its last four characters
// when it is long enough for that to be safe.
func Mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) < 16:
		return placeholder
	default:
		return placeholder + "..." + secret[len(secret)-4:]
	}
}
