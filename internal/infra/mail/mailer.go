// Package mail sends transactional e-mails. The default implementation is
// a development stub that logs the message instead of delivering it; the
// wiring (templates, resilience decorator) is the same a real SMTP
// transport would use.
package mail

import (
	"context"
	"fmt"

	"github.com/Maiolini/sitecafe/internal/domain"

	"go.uber.org/zap"
)

// Config holds mail settings.
type Config struct {
	FromName string
	FromAddr string
	// BaseURL is the frontend origin used to build reset links.
	BaseURL string
}

// LogMailer writes e-mails to the structured log. Used in development and
// whenever no SMTP credentials are configured.
type LogMailer struct {
	cfg    Config
	logger *zap.Logger
}

// NewLogMailer creates a log-backed mailer.
func NewLogMailer(cfg Config, logger *zap.Logger) *LogMailer {
	return &LogMailer{cfg: cfg, logger: logger}
}

// SendBoasVindas sends the welcome e-mail. Clientes get the cashback
// onboarding message; fornecedores are told their application is under
// review.
func (m *LogMailer) SendBoasVindas(ctx context.Context, to, nome string, tipo domain.TipoUsuario) error {
	subject := fmt.Sprintf("Bem-vindo ao %s, %s!", m.cfg.FromName, nome)

	var body string
	if tipo == domain.TipoCliente {
		body = fmt.Sprintf(
			"Olá %s, sua conta de cliente foi criada com sucesso! "+
				"Agora você pode aproveitar nosso sistema de cashback e benefícios exclusivos. "+
				"Acesse seu dashboard para começar a fazer pedidos.", nome)
	} else {
		body = fmt.Sprintf(
			"Olá %s, recebemos sua solicitação para se tornar um fornecedor parceiro. "+
				"Nossa equipe irá analisar sua proposta e entrar em contato em breve.", nome)
	}

	return m.deliver(ctx, to, subject, body)
}

// SendRecuperacaoSenha sends the password reset e-mail carrying the raw
// reset token in a frontend link. The link expires in one hour.
func (m *LogMailer) SendRecuperacaoSenha(ctx context.Context, to, nome, token string) error {
	subject := fmt.Sprintf("Recuperação de Senha - %s", m.cfg.FromName)
	link := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.BaseURL, token)
	body := fmt.Sprintf(
		"Olá %s, você solicitou a recuperação de sua senha. "+
			"Acesse %s para criar uma nova senha. Este link expira em 1 hora. "+
			"Se você não solicitou esta recuperação, ignore este e-mail.", nome, link)

	return m.deliver(ctx, to, subject, body)
}

func (m *LogMailer) deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info("e-mail enviado",
		zap.String("from", fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromAddr)),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
