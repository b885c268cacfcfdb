package handler

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:   "healthy",
		Services: make(map[string]string, len(h.health)),
	}
	status := http.StatusOK

	for name, check := range h.health {
		if err := check(ctx); err != nil {
			resp.Services[name] = "unhealthy"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "healthy"
	}

	h.writeJSON(w, r, status, Response{
		Success: status == http.StatusOK,
		Message: resp.Status,
		Data:    resp,
	})
}
