package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const maxHeaderValueSize = 8192

// Sanitize rejects requests carrying path traversal sequences, null bytes in
// the path or query, or header values that are oversized or contain line
// breaks. Rejections are 400s with the standard error body.
func Sanitize(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if reason := inspectRequest(req); reason != "" {
				logger.Warn().
					Str("request_id", GetRequestID(c)).
					Str("path", req.URL.Path).
					Str("remote_ip", c.RealIP()).
					Str("reason", reason).
					Msg("request rejected")
				return JSONError(c, http.StatusBadRequest, reason)
			}
			return next(c)
		}
	}
}

func inspectRequest(req *http.Request) string {
	path, rawPath := req.URL.Path, req.URL.RawPath
	if rawPath == "" {
		rawPath = path
	}
	if containsPathTraversal(path) || containsPathTraversal(rawPath) {
		return "path traversal detected"
	}
	if containsNullByte(path) || containsNullByte(rawPath) {
		return "null byte in path"
	}

	for name, values := range req.Header {
		for _, v := range values {
			if len(v) > maxHeaderValueSize {
				return "header value too large: " + name
			}
			if strings.ContainsAny(v, "\r\n") {
				return "line break in header: " + name
			}
		}
	}

	if containsNullByte(req.URL.RawQuery) {
		return "null byte in query"
	}
	for key, values := range req.URL.Query() {
		if containsNullByte(key) {
			return "null byte in query"
		}
		for _, v := range values {
			if containsNullByte(v) {
				return "null byte in query"
			}
		}
	}
	return ""
}

// containsPathTraversal matches ".." in plain, percent-encoded and
// double-encoded form.
func containsPathTraversal(s string) bool {
	if strings.Contains(s, "..") {
		return true
	}
	lower := strings.ToLower(s)
	return strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e")
}

func containsNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00') || strings.Contains(strings.ToLower(s), "%00")
}
