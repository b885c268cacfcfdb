package handler

import (
	"net/http"
	"strconv"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
	"github.com/Smarty6452/hbros-platform/backend/internal/service"
)

type jobRequest struct {
	Title string `json:"title" validate:"required,min=5,max=200"`
	Body  string `json:"body" validate:"required,min=10"`
}

// queryInt 参数缺省时返回默认值，无法解析时返回 false
func queryInt(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", 1)
	if !ok {
		h.serviceError(w, r, domain.ErrInvalidPagination)
		return
	}
	size, ok := queryInt(r, "size", h.config.Pagination.DefaultPageSize)
	if !ok {
		h.serviceError(w, r, domain.ErrInvalidPagination)
		return
	}

	jobs, err := h.jobs.ListJobs(r.Context(), service.ListJobsParams{
		Page:     page,
		PageSize: size,
		Search:   r.URL.Query().Get("search"),
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "jobs retrieved", jobs)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.serviceError(w, r, domain.ErrJobNotFound)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "job retrieved", job)
}

func (h *Handler) ListMyJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListMine(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "jobs retrieved", jobs)
}

func (h *Handler) ListInterestedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.jobs.ListInterestedUsers(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "interested users retrieved", users)
}

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), callerFrom(r.Context()), req.Title, req.Body)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusCreated, "job created", job)
}

func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.serviceError(w, r, domain.ErrJobNotFound)
		return
	}

	var req jobRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	job, err := h.jobs.UpdateJob(r.Context(), callerFrom(r.Context()), id, req.Title, req.Body)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "job updated", job)
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.serviceError(w, r, domain.ErrJobNotFound)
		return
	}

	if err := h.jobs.DeleteJob(r.Context(), callerFrom(r.Context()), id); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "job deleted", nil)
}
