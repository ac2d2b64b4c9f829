package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"vital-backend/internal/config"
	"vital-backend/pkg/models"
)

// Service envia notificações Web Push assinadas com as chaves VAPID.
// Sem chaves configuradas o serviço fica inerte: Enabled() retorna false e
// Send devolve ErrNotConfigured em vez de derrubar o pipeline.
type Service struct {
	publicKey  string
	privateKey string
	subject    string
	ttl        int
}

var ErrNotConfigured = errors.New("web push não configurado")

// DeliveryError carrega o status HTTP devolvido pelo serviço de push quando a
// entrega é rejeitada.
type DeliveryError struct {
	StatusCode int
	Endpoint   string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("push rejeitado com status %d", e.StatusCode)
}

func NewService(cfg *config.Config) *Service {
	if !cfg.WebPushEnabled() {
		log.Println("⚠️  VAPID keys não configuradas - Web Push desabilitado")
		return &Service{}
	}

	log.Println("✅ Web Push VAPID configurado com sucesso")
	return &Service{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subject:    cfg.VAPIDSubject,
		ttl:        60,
	}
}

// Enabled indica se as chaves VAPID estão presentes.
func (s *Service) Enabled() bool {
	return s.publicKey != "" && s.privateKey != ""
}

// PublicKey expõe a chave pública para a rota de status.
func (s *Service) PublicKey() string {
	return s.publicKey
}

// Send entrega o payload para um único dispositivo. Um status >= 400 vira
// *DeliveryError para que o chamador possa distinguir endpoint expirado
// (410/404) de falha transitória.
func (s *Service) Send(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return &DeliveryError{StatusCode: resp.StatusCode, Endpoint: sub.Endpoint}
	}

	return nil
}

// IsGone identifica o erro de endpoint permanentemente inválido (410 Gone ou
// 404), que deve resultar na remoção da subscription.
func IsGone(err error) bool {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.StatusCode == http.StatusGone || de.StatusCode == http.StatusNotFound
	}
	return false
}
