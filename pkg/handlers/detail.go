package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/logger"
	"github.com/konsumhq/konsum/pkg/store"
)

// ListDetails lists the meters or notes of a category, attributes flattened
// next to the id.
func (h *Handler) ListDetails(kind store.DetailKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setNoCacheHeaders(w)

		category := h.requireCategory(w, r)
		if category == nil {
			return
		}

		details, err := h.Store.ListDetails(r.Context(), category.ID, kind)
		if err != nil {
			logger.Error(errors.Wrapf(err, "failed to list %ss of %s", kind, category.ID))
			JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
			return
		}

		flattened := make([]map[string]interface{}, 0, len(details))
		for _, d := range details {
			entry := map[string]interface{}{"id": d.ID}
			for k, v := range d.Attributes {
				entry[k] = v
			}
			flattened = append(flattened, entry)
		}

		JSON(w, http.StatusOK, flattened)
	}
}

// AddDetail persists a meter or note. The body's name field becomes the id,
// everything else is kept as the attribute bag.
func (h *Handler) AddDetail(kind store.DetailKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setNoCacheHeaders(w)

		category := h.requireCategory(w, r)
		if category == nil {
			return
		}

		body := map[string]interface{}{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed request body"})
			return
		}

		name, _ := body["name"].(string)
		if name == "" {
			JSON(w, http.StatusBadRequest, MessageResponse{Message: "missing name"})
			return
		}
		delete(body, "name")

		if err := h.Store.PutDetail(r.Context(), category.ID, kind, store.Detail{ID: name, Attributes: body}); err != nil {
			logger.Error(errors.Wrapf(err, "failed to put %s in %s", kind, category.ID))
			JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
			return
		}

		JSON(w, http.StatusOK, MessageResponse{Message: "inserted"})
	}
}

// UpdateDetail acknowledges without mutating state. Updating meters and
// notes is a tracked incomplete feature; the route exists so clients get a
// stable answer instead of a 404.
func (h *Handler) UpdateDetail(kind store.DetailKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setNoCacheHeaders(w)

		if category := h.requireCategory(w, r); category == nil {
			return
		}

		JSON(w, http.StatusOK, struct{}{})
	}
}

// DeleteDetail acknowledges without mutating state, like UpdateDetail.
func (h *Handler) DeleteDetail(kind store.DetailKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setNoCacheHeaders(w)

		if category := h.requireCategory(w, r); category == nil {
			return
		}

		JSON(w, http.StatusOK, struct{}{})
	}
}
