package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Smarty6452/hbros-platform/backend/internal/config"
	"github.com/Smarty6452/hbros-platform/backend/internal/db"
	"github.com/Smarty6452/hbros-platform/backend/internal/handler"
	"github.com/Smarty6452/hbros-platform/backend/internal/logger"
	"github.com/Smarty6452/hbros-platform/backend/internal/mailer"
	"github.com/Smarty6452/hbros-platform/backend/internal/metrics"
	"github.com/Smarty6452/hbros-platform/backend/internal/notify"
	"github.com/Smarty6452/hbros-platform/backend/internal/repository"
	"github.com/Smarty6452/hbros-platform/backend/internal/service"
)

func main() {
	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("无法加载配置文件", "error", err)
		os.Exit(1)
	}

	/**********************************************
	 * 创建 logger
	 **********************************************/
	log := logger.New(os.Stdout, cfg.Environment, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("服务器异常退出", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	/**********************************************
	 * 连接数据库
	 **********************************************/
	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("无法连接到数据库: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
		log.Info("数据库迁移完成")
	}

	poolStats := metrics.NewPoolStatsCollector(pool)
	poolStats.Start(15 * time.Second)
	defer poolStats.Stop()

	/**********************************************
	 * 创建 repository
	 **********************************************/
	repo := repository.NewRepository(cfg, pool)

	/**********************************************
	 * 连接 redis 并启动通知中心
	 **********************************************/
	rdb, err := db.NewRedisClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("无法连接到 redis: %w", err)
	}
	defer rdb.Close()

	hub := notify.NewHub(rdb, cfg.Notification.ChannelPrefix, cfg.Notification.SessionBuffer)
	if err := hub.Start(ctx); err != nil {
		return fmt.Errorf("无法订阅通知频道: %w", err)
	}
	publisher := notify.NewPublisher(rdb, cfg.Notification.ChannelPrefix)

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		return fmt.Errorf("无法连接到 rabbitmq: %w", err)
	}
	defer conn.Close()

	// 建立通道
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("无法建立通道: %w", err)
	}
	defer ch.Close()

	// 声明队列
	if _, err := mailer.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		return fmt.Errorf("无法声明队列: %w", err)
	}
	mailPublisher := mailer.NewPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)

	/**********************************************
	 * 创建 service 与 handler
	 **********************************************/
	services := handler.Services{
		Auth:      service.NewAuth(repo, mailPublisher, cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Second, nil),
		Jobs:      service.NewJobs(repo, repo, cfg.Pagination.MaxPageSize, nil),
		Interests: service.NewInterests(repo, repo, publisher, time.Duration(cfg.Notification.PublishTimeout)*time.Second, nil),
		Hub:       hub,
		Health: map[string]handler.HealthCheck{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
	}

	h, err := handler.NewHandler(cfg, services)
	if err != nil {
		return fmt.Errorf("无法创建 handler: %w", err)
	}
	h.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("正在启动服务器...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		_ = hub.Close()
		return fmt.Errorf("无法启动服务器: %w", err)
	case <-ctx.Done():
	}
	log.Info("正在关闭服务器...")

	// SSE 连接不会自己结束，先关闭通知中心让所有流式响应返回
	if err := hub.Close(); err != nil {
		log.Warn("关闭通知中心失败", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务器失败: %w", err)
	}
	log.Info("服务器已成功关闭")
	return nil
}
