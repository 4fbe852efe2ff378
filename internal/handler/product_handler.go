package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shoptrack/backend/internal/service"
)

type ProductHandler struct {
	service ProductServiceInterface
	tracker TrackerInterface
}

func NewProductHandler(service ProductServiceInterface, tracker TrackerInterface) *ProductHandler {
	return &ProductHandler{service: service, tracker: tracker}
}

func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// Create starts tracking a marketplace product for the current user.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var input service.TrackInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.service.Track(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

// List returns the current user's tracked products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	products, err := h.service.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// Delete stops tracking a product.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	id, ok := productID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.service.Deactivate(r.Context(), id, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// History returns recorded price points for a product.
func (h *ProductHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	id, ok := productID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	points, err := h.service.History(r.Context(), id, userID, days)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, points)
}

// Check triggers an immediate price check outside the regular schedule.
func (h *ProductHandler) Check(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if !h.tracker.CheckNow(r.Context(), id) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "checked"})
}
