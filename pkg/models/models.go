package models

import "time"

// NotificacaoAgendada é uma linha da tabela notificacoes_agendadas: um lembrete
// único de reavaliação que o scheduler processa no máximo uma vez.
type NotificacaoAgendada struct {
	ID            string     `json:"id"`
	SolicitacaoID string     `json:"solicitacao_id"`
	HospitalID    *string    `json:"hospital_id,omitempty"`
	DataAgendada  time.Time  `json:"data_agendada"`
	Enviada       bool       `json:"enviada"`
	Titulo        *string    `json:"titulo,omitempty"`
	Mensagem      *string    `json:"mensagem,omitempty"`
	Erro          *string    `json:"erro,omitempty"`
	DataEnvio     *time.Time `json:"data_envio,omitempty"`
	CriadaEm      time.Time  `json:"criada_em"`
}

// PushSubscription é um endpoint Web Push registrado por um dispositivo.
// O endpoint é a chave natural de deduplicação (upsert por endpoint).
type PushSubscription struct {
	ID         string    `json:"id"`
	Endpoint   string    `json:"endpoint"`
	P256dh     string    `json:"p256dh"`
	Auth       string    `json:"auth"`
	UserID     *string   `json:"user_id,omitempty"`
	HospitalID *string   `json:"hospital_id,omitempty"`
	DeviceInfo *string   `json:"device_info,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Solicitacao é a solicitação clínica (TRR) — leitura apenas, o dono da tabela
// é o backend gerenciado.
type Solicitacao struct {
	ID         string    `json:"id"`
	Paciente   string    `json:"paciente"`
	Leito      string    `json:"leito"`
	Motivo     string    `json:"motivo"`
	MEWS       *int      `json:"mews,omitempty"`
	Status     string    `json:"status"`
	HospitalID *string   `json:"hospital_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
