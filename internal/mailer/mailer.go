// Package mailer отправляет пользователям письма с OTP и ответами поддержки.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	SubjectVerificationCode = "Rentspace verification code"
	SubjectSupportReply     = "Rentspace support"
)

// Mailer доставляет письмо одному получателю
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer пишет письма в лог вместо отправки
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer создает LogMailer
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send implements Mailer
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("mailer: empty recipient")
	}
	m.logger.InfoContext(ctx, "Mail sent",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body))
	return nil
}

// SendVerificationCode отправляет OTP. В обращении используется только имя без фамилии.
func SendVerificationCode(ctx context.Context, m Mailer, to, name, code string) error {
	body := fmt.Sprintf("Hi %s,\n\nyour verification code is %s.\nIt expires in a few minutes.", firstName(name), code)
	return m.Send(ctx, to, SubjectVerificationCode, body)
}

// SendSupportReply отправляет ответ администратора на обращение в поддержку
func SendSupportReply(ctx context.Context, m Mailer, to, message string) error {
	return m.Send(ctx, to, SubjectSupportReply, message)
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}
