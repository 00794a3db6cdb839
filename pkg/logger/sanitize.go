package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// sensitiveQueryParams are matched against lowercased query parameter names.
var sensitiveQueryParams = []string{"password", "token", "secret", "email", "auth", "signature", "code", "credential"}

// SanitizedEmail masks an email address for logging. The first character of
// the local part and the last domain label survive:
// "lruiz@uniboyaca.edu.co" becomes "l****@*********.***.co".
func SanitizedEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "[invalid-email]"
	}

	if len(local) > 1 {
		local = local[:1] + strings.Repeat("*", len(local)-1)
	}

	labels := strings.Split(domain, ".")
	for i := 0; i < len(labels)-1; i++ {
		labels[i] = strings.Repeat("*", len(labels[i]))
	}

	return local + "@" + strings.Join(labels, ".")
}

// RedactedAttr returns value under key outside production and "[REDACTED]" in it.
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

// SanitizeQueryString reports whether rawQuery names a sensitive parameter,
// in which case the whole query should be left out of logs. Unparseable
// queries are treated as sensitive.
func SanitizeQueryString(rawQuery string) bool {
	if rawQuery == "" {
		return false
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return true
	}

	for name := range values {
		name = strings.ToLower(name)
		for _, param := range sensitiveQueryParams {
			if strings.Contains(name, param) {
				return true
			}
		}
	}
	return false
}
