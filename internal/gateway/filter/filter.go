// Package filter implements the gateway's authentication layer: a pure
// decision function over (method, path, Authorization header) plus an
// http.Handler middleware applying it.
package filter

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/chatapp/internal/common"
	"github.com/dmitrijs2005/chatapp/internal/logging"
	"github.com/dmitrijs2005/chatapp/internal/token"
)

// unauthorizedBody is the fixed rejection payload. Every failure mode
// (missing header, malformed header, bad token) answers identically so
// probing requests learn nothing.
const unauthorizedBody = `{"error":"Unauthorized","message":"Invalid or missing JWT token"}`

// Decision is the outcome of checking one request.
type Decision struct {
	// Forward reports whether the request may proceed downstream.
	Forward bool
	// Subject is the authenticated user, empty for exempt requests.
	Subject string
}

// Filter decides which requests pass the edge. It holds no per-request
// state, so one instance serves all connections.
type Filter struct {
	codec          *token.Codec
	exemptPrefixes []string
	logger         logging.Logger
}

// New constructs a Filter verifying with secret and exempting the given
// path prefixes.
func New(secret string, exemptPrefixes []string, logger logging.Logger) *Filter {
	return &Filter{
		codec:          token.NewCodec(secret),
		exemptPrefixes: exemptPrefixes,
		logger:         logger.With("module", "auth_filter"),
	}
}

// Check evaluates a single request. Exempt paths and CORS preflights are
// forwarded without identity; everything else needs a valid Bearer token.
func (f *Filter) Check(method string, path string, authorization string) Decision {
	if method == http.MethodOptions {
		return Decision{Forward: true}
	}
	for _, prefix := range f.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return Decision{Forward: true}
		}
	}

	if !strings.HasPrefix(authorization, common.BearerPrefix) {
		return Decision{}
	}
	raw := authorization[len(common.BearerPrefix):]

	if !f.codec.Verify(raw) {
		return Decision{}
	}
	subject, err := f.codec.Subject(raw)
	if err != nil {
		return Decision{}
	}

	return Decision{Forward: true, Subject: subject}
}

// Middleware wraps next with the authentication check. Rejected requests
// get a generic 401; forwarded authenticated requests carry the subject in
// the X-User-Id header. Any inbound X-User-Id is dropped first so clients
// cannot spoof an identity on exempt paths.
func (f *Filter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(common.UserIDHeader)

		d := f.Check(r.Method, r.URL.Path, r.Header.Get(common.AuthorizationHeader))
		if !d.Forward {
			f.logger.Warn(r.Context(), "request rejected", "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(unauthorizedBody))
			return
		}

		if d.Subject != "" {
			r.Header.Set(common.UserIDHeader, d.Subject)
		}
		next.ServeHTTP(w, r)
	})
}
