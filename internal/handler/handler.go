package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Smarty6452/hbros-platform/backend/internal/config"
	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
	"github.com/Smarty6452/hbros-platform/backend/internal/notify"
	"github.com/Smarty6452/hbros-platform/backend/internal/service"
)

// HealthCheck 返回 nil 表示依赖可用
type HealthCheck func(ctx context.Context) error

type Services struct {
	Auth      *service.Auth
	Jobs      *service.Jobs
	Interests *service.Interests
	Hub       *notify.Hub
	Health    map[string]HealthCheck
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	translator ut.Translator

	auth      *service.Auth
	jobs      *service.Jobs
	interests *service.Interests
	hub       *notify.Hub
	health    map[string]HealthCheck

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, svc Services) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		translator: trans,

		auth:      svc.Auth,
		jobs:      svc.Jobs,
		interests: svc.Interests,
		hub:       svc.Hub,
		health:    svc.Health,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(h.metrics)

	h.Mux.Get("/healthz", h.Health)
	h.Mux.Handle("/metrics", promhttp.Handler())

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	h.Mux.Route("/jobs", func(r chi.Router) {
		// 公开接口
		r.Get("/", h.ListJobs)
		r.Get("/{id}", h.GetJob)

		// 以下 API 必须要在登录后才允许调用
		r.Group(func(r chi.Router) {
			r.Use(h.authenticate(false))
			r.Post("/{id}/interest", h.ExpressInterest) // 角色规则在 service 中判断

			r.Group(func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RolePoster}))
				r.Post("/", h.CreateJob)
				r.Get("/my", h.ListMyJobs)
				r.Get("/my-interested-users", h.ListInterestedUsers)
				r.Put("/{id}", h.UpdateJob)
				r.Delete("/{id}", h.DeleteJob)
			})
		})
	})

	// 浏览器的 EventSource 无法设置请求头，因此推送接口也接受 access_token 查询参数
	h.Mux.With(h.authenticate(true)).Get("/notifications/stream", h.StreamNotifications)
}
