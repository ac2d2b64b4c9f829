package notification

import (
	"testing"
	"time"

	"vital-backend/pkg/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCorMEWS(t *testing.T) {
	tests := []struct {
		mews int
		want string
	}{
		{0, "blue"},
		{1, "green"},
		{2, "green"},
		{3, "yellow"},
		{4, "yellow"},
		{5, "orange"},
		{6, "orange"},
		{7, "red"},
		{10, "red"},
		{-1, "blue"},
	}

	for _, tt := range tests {
		if got := CorMEWS(tt.mews); got != tt.want {
			t.Errorf("CorMEWS(%d) = %q, want %q", tt.mews, got, tt.want)
		}
	}
}

func TestUrgenciaMEWS(t *testing.T) {
	for mews := 0; mews < 7; mews++ {
		if got := UrgenciaMEWS(mews); got != "normal" {
			t.Errorf("UrgenciaMEWS(%d) = %q, want \"normal\"", mews, got)
		}
	}
	for _, mews := range []int{7, 8, 12} {
		if got := UrgenciaMEWS(mews); got != "high" {
			t.Errorf("UrgenciaMEWS(%d) = %q, want \"high\"", mews, got)
		}
	}
}

func TestCodigoCor(t *testing.T) {
	tests := map[string]string{
		"red":    "Código Vermelho",
		"orange": "Código Laranja",
		"yellow": "Código Amarelo",
		"green":  "Código Verde",
		"blue":   "Código Azul",
	}

	for cor, want := range tests {
		if got := CodigoCor(cor); got != want {
			t.Errorf("CodigoCor(%q) = %q, want %q", cor, got, want)
		}
	}
}

func TestBuildFromReminder_Defaults(t *testing.T) {
	n := models.NotificacaoAgendada{
		ID:            "n1",
		SolicitacaoID: "sol-123",
		DataAgendada:  time.Now(),
	}

	p := BuildFromReminder(n)

	if p.Title != "Tempo de Reavaliação Expirou!" {
		t.Errorf("título padrão errado: %q", p.Title)
	}
	if p.Body != "Paciente precisa de atenção!" {
		t.Errorf("corpo padrão errado: %q", p.Body)
	}
	if p.Tag != "reavaliacao-sol-123" {
		t.Errorf("tag deve incorporar o id da solicitação, veio %q", p.Tag)
	}
	if p.Data["tipo"] != "reavaliacao_expirada" {
		t.Errorf("tipo errado: %v", p.Data["tipo"])
	}
	if p.Data["solicitacao_id"] != "sol-123" {
		t.Errorf("solicitacao_id errado: %v", p.Data["solicitacao_id"])
	}
}

func TestBuildFromReminder_Overrides(t *testing.T) {
	n := models.NotificacaoAgendada{
		ID:            "n1",
		SolicitacaoID: "sol-123",
		Titulo:        strPtr("Reavaliar leito 12"),
		Mensagem:      strPtr("Paciente João, MEWS em alta"),
	}

	p := BuildFromReminder(n)

	if p.Title != "Reavaliar leito 12" {
		t.Errorf("override de título ignorado: %q", p.Title)
	}
	if p.Body != "Paciente João, MEWS em alta" {
		t.Errorf("override de mensagem ignorado: %q", p.Body)
	}
}

func TestBuildFromReminder_EmptyOverrideUsesDefault(t *testing.T) {
	n := models.NotificacaoAgendada{
		ID:            "n1",
		SolicitacaoID: "sol-123",
		Titulo:        strPtr(""),
	}

	p := BuildFromReminder(n)
	if p.Title != "Tempo de Reavaliação Expirou!" {
		t.Errorf("título vazio deveria cair no padrão, veio %q", p.Title)
	}
}

func TestBuildFromSolicitacao(t *testing.T) {
	s := models.Solicitacao{
		ID:       "sol-9",
		Paciente: "Maria",
		Leito:    "UTI-3",
		Motivo:   "Rebaixamento de consciência",
		MEWS:     intPtr(8),
	}

	p := BuildFromSolicitacao(s)

	if p.Title != "🚨 Nova Solicitação TRR" {
		t.Errorf("título errado: %q", p.Title)
	}
	if p.Tag != "solicitacao-sol-9" {
		t.Errorf("tag deve incorporar o id da solicitação, veio %q", p.Tag)
	}
	if p.Data["cor"] != "red" {
		t.Errorf("MEWS 8 deveria classificar red, veio %v", p.Data["cor"])
	}
	if p.Data["urgencia"] != "high" {
		t.Errorf("MEWS 8 deveria ser high, veio %v", p.Data["urgencia"])
	}
	if !p.RequireInteraction {
		t.Error("urgência high exige requireInteraction")
	}
}

func TestBuildFromSolicitacao_SemMEWS(t *testing.T) {
	s := models.Solicitacao{ID: "sol-10", Paciente: "José", Motivo: "Dor torácica"}

	p := BuildFromSolicitacao(s)

	if p.Data["cor"] != "blue" {
		t.Errorf("sem MEWS deveria classificar blue, veio %v", p.Data["cor"])
	}
	if p.Data["urgencia"] != "normal" {
		t.Errorf("sem MEWS deveria ser normal, veio %v", p.Data["urgencia"])
	}
	if p.RequireInteraction {
		t.Error("urgência normal não deve exigir requireInteraction")
	}
}
