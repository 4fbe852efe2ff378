package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shoptrack/backend/internal/repository"
)

type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

type registerInput struct {
	TelegramID int64 `json:"telegram_id"`
}

type profileInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func telegramIDFromRequest(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get(telegramIDHeader), 10, 64)
	return id
}

// Register creates (or returns) the user for a Telegram chat.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input registerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.TelegramID <= 0 {
		respondError(w, http.StatusBadRequest, "telegram_id is required")
		return
	}

	user, err := h.service.RegisterTelegramUser(r.Context(), input.TelegramID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// CompleteProfile stores the caller's name and phone, finishing registration.
func (h *UserHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	var input profileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.CompleteProfile(r.Context(), telegramIDFromRequest(r), input.Name, input.Phone); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the user for the authenticated chat.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByTelegramID(r.Context(), telegramIDFromRequest(r))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
