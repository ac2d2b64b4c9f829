package notification

import (
	"fmt"

	"vital-backend/pkg/models"
)

// Payload é o formato de wire consumido pelo service worker no dispositivo.
type Payload struct {
	Title              string                 `json:"title"`
	Body               string                 `json:"body"`
	Icon               string                 `json:"icon"`
	Badge              string                 `json:"badge"`
	Tag                string                 `json:"tag"`
	Data               map[string]interface{} `json:"data"`
	RequireInteraction bool                   `json:"requireInteraction"`
}

const (
	defaultIcon  = "/icons/icon-192x192.png"
	defaultBadge = "/icons/icon-72x72.png"

	defaultReminderTitle = "Tempo de Reavaliação Expirou!"
	defaultReminderBody  = "Paciente precisa de atenção!"
)

// CorMEWS classifica o score MEWS na cor de código do protocolo TRR.
func CorMEWS(mews int) string {
	switch {
	case mews >= 7:
		return "red"
	case mews >= 5:
		return "orange"
	case mews >= 3:
		return "yellow"
	case mews >= 1:
		return "green"
	default:
		return "blue"
	}
}

// CodigoCor converte a cor no rótulo exibido para a equipe.
func CodigoCor(cor string) string {
	switch cor {
	case "red":
		return "Código Vermelho"
	case "orange":
		return "Código Laranja"
	case "yellow":
		return "Código Amarelo"
	case "green":
		return "Código Verde"
	default:
		return "Código Azul"
	}
}

// UrgenciaMEWS é "high" apenas para código vermelho.
func UrgenciaMEWS(mews int) string {
	if CorMEWS(mews) == "red" {
		return "high"
	}
	return "normal"
}

// BuildFromReminder monta o payload de um lembrete agendado de reavaliação.
// Título e mensagem da linha, quando presentes, substituem os padrões.
func BuildFromReminder(n models.NotificacaoAgendada) Payload {
	title := defaultReminderTitle
	if n.Titulo != nil && *n.Titulo != "" {
		title = *n.Titulo
	}

	body := defaultReminderBody
	if n.Mensagem != nil && *n.Mensagem != "" {
		body = *n.Mensagem
	}

	return Payload{
		Title: title,
		Body:  body,
		Icon:  defaultIcon,
		Badge: defaultBadge,
		Tag:   "reavaliacao-" + n.SolicitacaoID,
		Data: map[string]interface{}{
			"tipo":           "reavaliacao_expirada",
			"solicitacao_id": n.SolicitacaoID,
			"url":            "/",
		},
	}
}

// BuildFromSolicitacao monta o payload de uma solicitação recém-criada
// (caminho do webhook). A urgência vem da classificação MEWS.
func BuildFromSolicitacao(s models.Solicitacao) Payload {
	mews := 0
	if s.MEWS != nil {
		mews = *s.MEWS
	}

	cor := CorMEWS(mews)
	urgencia := UrgenciaMEWS(mews)

	motivo := s.Motivo
	if motivo == "" {
		motivo = "Nova solicitação"
	}

	paciente := s.Paciente
	if paciente == "" {
		paciente = "N/A"
	}

	body := fmt.Sprintf("Paciente: %s - %s", paciente, motivo)
	if s.Leito != "" {
		body = fmt.Sprintf("Paciente: %s (leito %s) - %s", paciente, s.Leito, motivo)
	}

	return Payload{
		Title: "🚨 Nova Solicitação TRR",
		Body:  body,
		Icon:  defaultIcon,
		Badge: defaultBadge,
		Tag:   "solicitacao-" + s.ID,
		Data: map[string]interface{}{
			"tipo":           "nova_solicitacao",
			"solicitacao_id": s.ID,
			"cor":            cor,
			"codigo":         CodigoCor(cor),
			"mews":           mews,
			"urgencia":       urgencia,
			"url":            "/",
		},
		RequireInteraction: urgencia == "high",
	}
}
