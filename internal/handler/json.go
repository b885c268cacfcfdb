package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

const maxBodyBytes = 1 << 20

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "error", err)
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// decodeAndValidate 读取请求体并校验，失败时已经写出 400 响应
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := h.readJSON(w, r, v); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		h.badRequest(w, r, err)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.errorResponse(w, r, http.StatusBadRequest, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, "internal server error")
}

// serviceError 把领域错误映射为 HTTP 状态码，其余错误一律按 500 处理且不向客户端暴露细节
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		h.errorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrRoleNotAllowed):
		h.errorResponse(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAlreadyInterested), errors.Is(err, domain.ErrJobExpired), errors.Is(err, domain.ErrEmailTaken):
		h.errorResponse(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidPagination):
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrUnauthenticated):
		h.errorResponse(w, r, http.StatusUnauthorized, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, status int, msg string, data any) {
	h.writeJSON(w, r, status, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}
