package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"vital-backend/internal/config"
	"vital-backend/pkg/models"
)

func TestNewServiceSemChaves(t *testing.T) {
	s := NewService(&config.Config{})

	if s.Enabled() {
		t.Error("serviço sem chaves VAPID deve ficar desabilitado")
	}
	if s.PublicKey() != "" {
		t.Error("serviço desabilitado não expõe chave pública")
	}
}

func TestNewServiceComChaves(t *testing.T) {
	cfg := &config.Config{
		VAPIDPublicKey:  "BPub",
		VAPIDPrivateKey: "priv",
		VAPIDSubject:    "mailto:suporte@appvital.com.br",
	}

	s := NewService(cfg)

	if !s.Enabled() {
		t.Error("serviço com chaves VAPID deve ficar habilitado")
	}
	if s.PublicKey() != "BPub" {
		t.Errorf("chave pública esperada BPub, veio %q", s.PublicKey())
	}
}

func TestSendDesabilitadoRetornaErrNotConfigured(t *testing.T) {
	s := &Service{}

	err := s.Send(context.Background(), models.PushSubscription{Endpoint: "https://push/x"}, []byte(`{}`))
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("esperado ErrNotConfigured, veio %v", err)
	}
}

func TestDeliveryErrorMensagem(t *testing.T) {
	err := &DeliveryError{StatusCode: http.StatusGone, Endpoint: "https://push/morto"}

	if !strings.Contains(err.Error(), "410") {
		t.Errorf("mensagem deve conter o status HTTP: %q", err.Error())
	}
}

func TestIsGone(t *testing.T) {
	tests := []struct {
		nome string
		err  error
		gone bool
	}{
		{"410 gone", &DeliveryError{StatusCode: http.StatusGone}, true},
		{"404 not found", &DeliveryError{StatusCode: http.StatusNotFound}, true},
		{"400 bad request", &DeliveryError{StatusCode: http.StatusBadRequest}, false},
		{"500 internal", &DeliveryError{StatusCode: http.StatusInternalServerError}, false},
		{"wrapped 410", fmt.Errorf("envio falhou: %w", &DeliveryError{StatusCode: http.StatusGone}), true},
		{"erro genérico", errors.New("timeout"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			if got := IsGone(tt.err); got != tt.gone {
				t.Errorf("IsGone(%v) = %v, esperado %v", tt.err, got, tt.gone)
			}
		})
	}
}
