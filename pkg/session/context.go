package session

import (
	"context"
	"net/http"
)

type contextKey int

const identityContextKey contextKey = iota

// ContextSetIdentity attaches the verified identity to the request. The
// identity value itself is never mutated afterwards.
func ContextSetIdentity(r *http.Request, identity *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityContextKey, identity))
}

// ContextGetIdentity returns the identity attached by the authentication
// gate, or nil when the gate did not run.
func ContextGetIdentity(r *http.Request) *Identity {
	identity, ok := r.Context().Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}
