package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/logger"
	"github.com/konsumhq/konsum/pkg/store"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	setNoCacheHeaders(w)

	categories, err := h.Store.ListCategories(r.Context())
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to list categories"))
		JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
		return
	}

	JSON(w, http.StatusOK, categories)
}

type CategoryRequest struct {
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

// AddCategory upserts a category under the caller-chosen id from the path.
func (h *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	categoryRequest := CategoryRequest{}
	if err := json.NewDecoder(r.Body).Decode(&categoryRequest); err != nil && !errors.Is(err, io.EOF) {
		JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed request body"})
		return
	}

	category := store.Category{
		ID:          mux.Vars(r)["category"],
		Description: categoryRequest.Description,
		Unit:        categoryRequest.Unit,
	}

	if err := h.Store.PutCategory(r.Context(), category); err != nil {
		logger.Error(errors.Wrapf(err, "failed to put category %s", category.ID))
		JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
		return
	}

	JSON(w, http.StatusOK, MessageResponse{Message: "updated"})
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["category"]

	if err := h.Store.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			JSON(w, http.StatusNotFound, MessageResponse{Message: "No such category"})
			return
		}
		logger.Error(errors.Wrapf(err, "failed to delete category %s", id))
		JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
		return
	}

	JSON(w, http.StatusOK, MessageResponse{Message: "deleted"})
}

// requireCategory loads the referenced category or ends the request with the
// canonical 404.
func (h *Handler) requireCategory(w http.ResponseWriter, r *http.Request) *store.Category {
	id := mux.Vars(r)["category"]

	category, err := h.Store.GetCategory(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			JSON(w, http.StatusNotFound, MessageResponse{Message: "No such category"})
			return nil
		}
		logger.Error(errors.Wrapf(err, "failed to get category %s", id))
		JSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
		return nil
	}

	return category
}
