package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"0"` // SSE 连接是长连接，默认不限制写超时
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN            string `env:"DSN,required,notEmpty"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout   int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		MaxConns       int32  `env:"MAX_CONNS" envDefault:"10"`
		MinConns       int32  `env:"MIN_CONNS" envDefault:"2"`
		MaxIdleTime    int    `env:"MAX_IDLE_TIME" envDefault:"60"`
		AutoMigrate    bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 天，单位为秒
		Secret     string `env:"SECRET,required,notEmpty"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"password123"`
		} `envPrefix:"USER_"`
		EmailDomain string `env:"EMAIL_DOMAIN" envDefault:"handybros.test"`
	} `envPrefix:"SEED_"`
	Email struct {
		From string `env:"FROM" envDefault:"no-reply@handybros.test"`
		SMTP struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST" envDefault:"localhost"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required,notEmpty"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"5"`
	} `envPrefix:"REDIS_"`
	Notification struct {
		ChannelPrefix     string `env:"CHANNEL_PREFIX" envDefault:"notifications:user:"`
		SessionBuffer     int    `env:"SESSION_BUFFER" envDefault:"16"`
		PublishTimeout    int    `env:"PUBLISH_TIMEOUT" envDefault:"3"`
		HeartbeatInterval int    `env:"HEARTBEAT_INTERVAL" envDefault:"25"`
	} `envPrefix:"NOTIFICATION_"`
	Pagination struct {
		DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
		MaxPageSize     int `env:"MAX_PAGE_SIZE" envDefault:"100"`
	} `envPrefix:"PAGINATION_"`
}

// LoadConfig 先尝试读取 .env 文件（不存在则忽略），再从环境变量中解析配置
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
