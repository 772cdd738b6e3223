package apiclient

import (
	"net/url"
	"strings"
)

// APIPathSuffix is appended to the application origin when no override is set.
const APIPathSuffix = "/api/v1/"

// ResolveBaseURL returns override when it is non-empty, otherwise origin
// followed by APIPathSuffix. The result always ends with a slash.
func ResolveBaseURL(override, origin string) (string, error) {
	base := strings.TrimSpace(override)
	field := "api.url"
	if base == "" {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			return "", NewValidationError("no base URL override and no application origin", "api.url")
		}
		base = origin + APIPathSuffix
		field = "app.origin"
	}

	if !isAbsoluteURL(base) {
		return "", NewValidationError("base URL must be absolute: "+base, field)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base, nil
}

// joinURL resolves ref against base. Absolute refs pass through; relative
// refs are appended to base with leading slashes dropped, so "/widgets" and
// "widgets" both land under the base path.
func joinURL(base, ref string) (string, error) {
	if isAbsoluteURL(ref) {
		return ref, nil
	}
	if base == "" {
		return "", NewValidationError("relative URL without a base URL: "+ref, "url")
	}
	target := base + strings.TrimLeft(ref, "/")
	if !isAbsoluteURL(target) {
		return "", NewValidationError("invalid URL: "+target, "url")
	}
	return target, nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
