package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/auth"
	"github.com/konsumhq/konsum/pkg/entitlement"
	"github.com/konsumhq/konsum/pkg/logger"
	"github.com/konsumhq/konsum/pkg/session"
)

type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticate resolves credentials through the auth collaborator and mints
// the token pair. Valid credentials without the base entitlement still fail
// with a 401.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	authenticateRequest := AuthenticateRequest{}
	if err := json.NewDecoder(r.Body).Decode(&authenticateRequest); err != nil {
		JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed request body"})
		return
	}

	entitlements, err := h.Authenticator.Authenticate(r.Context(), authenticateRequest.Username, authenticateRequest.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Error(errors.Wrap(err, "failed to authenticate"))
			JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
			return
		}
		JSON(w, http.StatusUnauthorized, MessageResponse{Message: "Authentication failed"})
		return
	}

	tokenSet, err := session.Issue(h.Config, authenticateRequest.Username, entitlement.NewSet(entitlements...))
	if err != nil {
		if errors.Is(err, session.ErrNotEntitled) {
			JSON(w, http.StatusUnauthorized, MessageResponse{Message: "Authentication failed"})
			return
		}
		logger.Error(errors.Wrap(err, "failed to issue token"))
		JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
		return
	}

	JSON(w, http.StatusOK, tokenSet)
}
