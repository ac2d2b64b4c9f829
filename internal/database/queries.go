package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vital-backend/pkg/models"
)

// BatchLimit limita quantos lembretes um tick processa.
const BatchLimit = 50

// DueReminders busca lembretes vencidos e ainda não enviados.
func (db *DB) DueReminders(ctx context.Context, now time.Time, limit int) ([]models.NotificacaoAgendada, error) {
	query := `
		SELECT id, solicitacao_id, hospital_id, data_agendada, enviada, titulo, mensagem, erro, data_envio, criada_em
		FROM notificacoes_agendadas
		WHERE data_agendada <= $1
		  AND enviada = false
		LIMIT $2
	`

	rows, err := db.conn.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notificacoes_agendadas: %w", err)
	}
	defer rows.Close()

	var notificacoes []models.NotificacaoAgendada
	for rows.Next() {
		var n models.NotificacaoAgendada
		err := rows.Scan(
			&n.ID, &n.SolicitacaoID, &n.HospitalID, &n.DataAgendada, &n.Enviada,
			&n.Titulo, &n.Mensagem, &n.Erro, &n.DataEnvio, &n.CriadaEm,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notificacao: %w", err)
		}
		notificacoes = append(notificacoes, n)
	}

	return notificacoes, rows.Err()
}

// ClaimReminder marca o lembrete como enviado de forma condicional. Retorna
// false quando outra instância/tick já o reivindicou (zero linhas afetadas).
func (db *DB) ClaimReminder(ctx context.Context, id string) (bool, error) {
	query := `UPDATE notificacoes_agendadas SET enviada = true WHERE id = $1 AND enviada = false`

	result, err := db.conn.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim notificacao: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// FinishReminder registra o carimbo de conclusão e a anotação de erro (se houver).
func (db *DB) FinishReminder(ctx context.Context, id string, erro *string) error {
	query := `UPDATE notificacoes_agendadas SET data_envio = $1, erro = $2 WHERE id = $3`

	if _, err := db.conn.ExecContext(ctx, query, time.Now(), erro, id); err != nil {
		return fmt.Errorf("failed to finish notificacao: %w", err)
	}

	return nil
}

// CountReminders conta lembretes por estado de envio.
func (db *DB) CountReminders(ctx context.Context, enviada bool) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notificacoes_agendadas WHERE enviada = $1`, enviada).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notificacoes: %w", err)
	}
	return count, nil
}

// SubscriptionsByHospital busca as subscriptions do hospital informado.
// O filtro é estrito: nunca retorna subscriptions de outro tenant.
func (db *DB) SubscriptionsByHospital(ctx context.Context, hospitalID string) ([]models.PushSubscription, error) {
	query := `
		SELECT id, endpoint, p256dh, auth, user_id, hospital_id, device_info, created_at, updated_at
		FROM push_subscriptions
		WHERE hospital_id = $1
	`

	rows, err := db.conn.QueryContext(ctx, query, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query push_subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// RecentSubscriptions lista as subscriptions mais recentes (rota de debug).
func (db *DB) RecentSubscriptions(ctx context.Context, limit int) ([]models.PushSubscription, error) {
	query := `
		SELECT id, endpoint, p256dh, auth, user_id, hospital_id, device_info, created_at, updated_at
		FROM push_subscriptions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query push_subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

func scanSubscriptions(rows *sql.Rows) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	for rows.Next() {
		var s models.PushSubscription
		err := rows.Scan(
			&s.ID, &s.Endpoint, &s.P256dh, &s.Auth, &s.UserID,
			&s.HospitalID, &s.DeviceInfo, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}

	return subs, rows.Err()
}

// UpsertSubscription registra um endpoint. Conflito em endpoint substitui a
// linha anterior em vez de duplicar.
func (db *DB) UpsertSubscription(ctx context.Context, s models.PushSubscription) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := `
		INSERT INTO push_subscriptions (id, endpoint, p256dh, auth, user_id, hospital_id, device_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (endpoint) DO UPDATE SET
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth,
			user_id = EXCLUDED.user_id,
			hospital_id = EXCLUDED.hospital_id,
			device_info = EXCLUDED.device_info,
			updated_at = NOW()
		RETURNING id
	`

	var id string
	err := db.conn.QueryRowContext(ctx, query,
		s.ID, s.Endpoint, s.P256dh, s.Auth, s.UserID, s.HospitalID, s.DeviceInfo,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return id, nil
}

// DeleteSubscriptionByEndpoint remove a subscription registrada para o endpoint.
func (db *DB) DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint); err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// DeleteSubscriptionByID remove a subscription pelo id (limpeza de endpoint expirado).
func (db *DB) DeleteSubscriptionByID(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// GetSolicitacao busca uma solicitação pelo id (somente leitura).
func (db *DB) GetSolicitacao(ctx context.Context, id string) (*models.Solicitacao, error) {
	query := `
		SELECT id, paciente, leito, motivo, mews, status, hospital_id, created_at
		FROM solicitacoes
		WHERE id = $1
	`

	var s models.Solicitacao
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Paciente, &s.Leito, &s.Motivo, &s.MEWS, &s.Status, &s.HospitalID, &s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("solicitação não encontrada: %s", id)
		}
		return nil, fmt.Errorf("failed to query solicitacao: %w", err)
	}

	return &s, nil
}
