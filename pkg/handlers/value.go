package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/logger"
	"github.com/konsumhq/konsum/pkg/store"
	"github.com/konsumhq/konsum/pkg/util"
)

// ListValues lists or streams the values of a category. JSON materializes
// the selection, text streams it without buffering; anything else is a 406.
func (h *Handler) ListValues(w http.ResponseWriter, r *http.Request) {
	setNoCacheHeaders(w)

	category := h.requireCategory(w, r)
	if category == nil {
		return
	}

	limit := -1
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed limit"})
			return
		}
		limit = n
	}

	opts := store.ListOptions{
		Limit:   limit,
		Reverse: util.IsTrue(r.URL.Query().Get("reverse")),
	}

	switch acceptedRepresentation(r.Header.Get("Accept")) {
	case "json":
		values := []store.Value{}
		err := h.Store.EachValue(r.Context(), category.ID, opts, func(v store.Value) error {
			values = append(values, v)
			return nil
		})
		if err != nil {
			logger.Error(errors.Wrapf(err, "failed to list values of %s", category.ID))
			JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
			return
		}
		JSON(w, http.StatusOK, values)

	case "text":
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)

		err := h.Store.EachValue(r.Context(), category.ID, opts, func(v store.Value) error {
			_, err := fmt.Fprintf(w, "%s %s\n", strconv.FormatFloat(v.Time, 'f', -1, 64), v.Value)
			return err
		})
		if err != nil {
			// headers are gone; a write failure here usually means the
			// client went away, which also aborted the producer
			logger.Error(errors.Wrapf(err, "failed to stream values of %s", category.ID))
		}

	default:
		JSON(w, http.StatusNotAcceptable, MessageResponse{Message: "json, or text only"})
	}
}

// acceptedRepresentation negotiates the response representation, preferring
// json over text. An empty Accept header counts as json.
func acceptedRepresentation(accept string) string {
	if accept == "" {
		return "json"
	}

	acceptsText := false
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch mediaType {
		case "*/*", "application/*", "application/json":
			return "json"
		case "text/*", "text/plain":
			acceptsText = true
		}
	}

	if acceptsText {
		return "text"
	}
	return ""
}

// ValueEntry is one element of an insert request. Time is epoch
// milliseconds; a missing time means the request-receipt time.
type ValueEntry struct {
	Value FlexibleString `json:"value"`
	Time  *float64       `json:"time,omitempty"`
}

// FlexibleString accepts a JSON string or number and keeps its text form.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleString(s)
		return nil
	}
	*f = FlexibleString(string(data))
	return nil
}

// InsertValues accepts a single entry or an array of entries. Entries apply
// independently in order; a failure keeps everything inserted before it.
func (h *Handler) InsertValues(w http.ResponseWriter, r *http.Request) {
	category := h.requireCategory(w, r)
	if category == nil {
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed request body"})
		return
	}

	entries := []ValueEntry{}
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		if err := json.Unmarshal(body, &entries); err != nil {
			JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed request body"})
			return
		}
	} else {
		entry := ValueEntry{}
		if err := json.Unmarshal(body, &entry); err != nil {
			JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed request body"})
			return
		}
		entries = append(entries, entry)
	}

	receivedAt := float64(time.Now().UnixMilli())

	for _, entry := range entries {
		millis := receivedAt
		if entry.Time != nil {
			millis = *entry.Time
		}

		if err := h.Store.WriteValue(r.Context(), category.ID, string(entry.Value), millis/1000); err != nil {
			logger.Error(errors.Wrapf(err, "failed to write value to %s", category.ID))
			JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
			return
		}
	}

	JSON(w, http.StatusOK, MessageResponse{Message: "inserted"})
}

type DeleteValueRequest struct {
	Key *float64 `json:"key"`
}

// DeleteValue removes a single value by its time key (epoch seconds).
func (h *Handler) DeleteValue(w http.ResponseWriter, r *http.Request) {
	category := h.requireCategory(w, r)
	if category == nil {
		return
	}

	deleteRequest := DeleteValueRequest{}
	if err := json.NewDecoder(r.Body).Decode(&deleteRequest); err != nil || deleteRequest.Key == nil {
		JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed request body"})
		return
	}

	if err := h.Store.DeleteValue(r.Context(), category.ID, *deleteRequest.Key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			JSON(w, http.StatusNotFound, MessageResponse{Message: "No such value"})
			return
		}
		logger.Error(errors.Wrapf(err, "failed to delete value of %s", category.ID))
		JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
		return
	}

	JSON(w, http.StatusOK, MessageResponse{Message: "deleted"})
}
