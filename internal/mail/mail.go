package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaverhq/weaver/internal/config"
)

// Message is a rendered outbound email.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
	Name() string
}

// New builds the sender selected by MAIL_TRANSPORT.
func New(cfg *config.Config) (Sender, error) {
	switch cfg.MailTransport {
	case "smtp":
		return NewSMTPSender(cfg)
	case "amqp":
		return NewAMQPSender(cfg.AMQPURL, cfg.AMQPMailQueue)
	case "log", "":
		return NewLogSender(slog.Default()), nil
	default:
		return nil, fmt.Errorf("unsupported MAIL_TRANSPORT %q", cfg.MailTransport)
	}
}

// LogSender writes messages to the structured log instead of delivering
// them. Used in development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	s.logger.InfoContext(ctx, "email captured",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.TextBody,
	)
	return nil
}

func (s *LogSender) Name() string {
	return "log"
}
