package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/Smarty6452/hbros-platform/backend/internal/config"
	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
	"github.com/Smarty6452/hbros-platform/backend/internal/logger"
	"github.com/Smarty6452/hbros-platform/backend/internal/mailer"
)

func main() {
	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * 创建 logger
	 **********************************************/
	log := logger.New(os.Stdout, cfg.Environment, cfg.LogLevel)
	slog.SetDefault(log)

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		log.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer client.Close()

	// 验证邮件客户端是否连接成功
	dialCtx, cancelDial := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancelDial()
	if err := client.DialWithContext(dialCtx); err != nil {
		log.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		log.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		log.Error("无法创建通道", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer ch.Close()

	// 声明队列，参数与 api 服务保持一致
	q, err := mailer.DeclareQueue(ch, cfg.RabbitMQ.Queue)
	if err != nil {
		log.Error("无法声明队列", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息，手动确认
	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		log.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Warn("消息通道已关闭")
					return
				}
				handleDelivery(ctx, log, client, cfg.Email.From, msg)
			}
		}
	}()

	// 等待 CTRL+C 信号
	log.Info("等待消息...（按 CTRL+C 退出）", slog.String("queue", q.Name))
	<-sigChan

	// 优雅退出
	log.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	log.Info("mail worker 已成功关闭")
}

// handleDelivery 处理一条邮件消息。无法解析的消息直接丢弃，发送失败的消息重新入队
func handleDelivery(ctx context.Context, log *slog.Logger, client *mail.Client, from string, msg amqp.Delivery) {
	mailMessage := domain.MailMessage{}
	if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
		log.Error("邮件信息反序列化失败", slog.String("error", err.Error()))
		_ = msg.Nack(false, false)
		return
	}
	log.Info("收到消息", slog.String("type", mailMessage.Type), slog.String("to", mailMessage.To))

	m, err := mailer.Compose(from, &mailMessage)
	if err != nil {
		log.Error("无法构建邮件", slog.String("error", err.Error()))
		_ = msg.Nack(false, false)
		return
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		log.Error("邮件发送失败", slog.String("error", err.Error()))
		_ = msg.Nack(false, true) // 将消息重新入队
		return
	}

	// 确认消息
	_ = msg.Ack(false)
}
