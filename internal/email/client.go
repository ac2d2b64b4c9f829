package email

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"vital-backend/internal/config"
)

// Service envia emails de fallback quando nenhum dispositivo recebeu o push.
type Service struct {
	cfg    *config.Config
	dialer *gomail.Dialer
}

// NewService cria o serviço de email. Sem credenciais SMTP retorna erro e o
// chamador segue sem fallback.
func NewService(cfg *config.Config) (*Service, error) {
	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		return nil, fmt.Errorf("SMTP credentials not configured")
	}

	dialer := gomail.NewDialer(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUsername,
		cfg.SMTPPassword,
	)

	return &Service{
		cfg:    cfg,
		dialer: dialer,
	}, nil
}

// SendEmail envia um email com corpo HTML.
func (s *Service) SendEmail(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, s.cfg.SMTPFromEmail))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendReavaliacaoAlert avisa a equipe por email que um lembrete de reavaliação
// venceu sem nenhum dispositivo alcançado pelo push.
func (s *Service) SendReavaliacaoAlert(to, titulo, mensagem, solicitacaoID string) error {
	subject := fmt.Sprintf("⚠️ %s", titulo)
	htmlBody := ReavaliacaoAlertTemplate(titulo, mensagem, solicitacaoID)

	if err := s.SendEmail(to, subject, htmlBody); err != nil {
		log.Printf("❌ Erro ao enviar email de reavaliação: %v", err)
		return err
	}

	log.Printf("📧 Email de reavaliação enviado para: %s", to)
	return nil
}
