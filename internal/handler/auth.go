package handler

import (
	"net/http"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
	"github.com/Smarty6452/hbros-platform/backend/internal/service"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required,min=2,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		Role     string `json:"role" validate:"required,oneof=Poster Viewer"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusCreated, "registration successful", user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "login successful", result)
}
