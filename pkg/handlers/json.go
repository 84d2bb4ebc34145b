package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/konsumhq/konsum/pkg/logger"
)

// MessageResponse is the envelope for mutation acknowledgements and short
// error messages.
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
