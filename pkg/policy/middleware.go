package policy

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/logger"
	"github.com/konsumhq/konsum/pkg/session"
)

// EntitlementError is the 403 response for a caller that authenticated but
// lacks the entitlement a route declares.
type EntitlementError struct {
	Entitlement string
}

func NewEntitlementError(entitlement string) *EntitlementError {
	return &EntitlementError{Entitlement: entitlement}
}

func (e EntitlementError) Abort(w http.ResponseWriter) error {
	err := errors.Errorf("missing %s", e.Entitlement)
	JSON(w, http.StatusForbidden, MessageResponse{Message: err.Error()})
	return err
}

// Middleware gates handlers on entitlements held by the request identity.
type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// EnforceEntitlement wraps handler so it only runs when the authenticated
// identity holds the entitlement. It must be installed after the
// authentication gate; an absent identity is a denial, not an error.
func (m *Middleware) EnforceEntitlement(entitlement string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := session.ContextGetIdentity(r)
		if !identity.HasEntitlement(entitlement) {
			logger.Error(NewEntitlementError(entitlement).Abort(w))
			return
		}

		handler(w, r)
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
