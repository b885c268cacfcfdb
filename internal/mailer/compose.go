package mailer

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var ErrUnsupportedType = errors.New("unsupported mail type")

// Compose 把队列中的消息转换为可发送的邮件
func Compose(from string, msg *domain.MailMessage) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}

	switch msg.Type {
	case domain.MailTypeWelcome:
		data := domain.WelcomeMailData{}
		if err := decodeData(msg.Data, &data); err != nil {
			return nil, err
		}
		if err := m.SetBodyHTMLTemplate(templates.Lookup("welcome.html"), data); err != nil {
			return nil, fmt.Errorf("render welcome mail: %w", err)
		}
		m.Subject("Welcome to HandyBros")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, msg.Type)
	}

	return m, nil
}

// 从队列反序列化后 Data 是 map[string]any，需要重新解码成具体类型
func decodeData(src any, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("decode mail data: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode mail data: %w", err)
	}
	return nil
}
