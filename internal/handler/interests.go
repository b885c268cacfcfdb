package handler

import (
	"net/http"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

func (h *Handler) ExpressInterest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.serviceError(w, r, domain.ErrJobNotFound)
		return
	}

	interest, err := h.interests.ExpressInterest(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "interest recorded", interest)
}
