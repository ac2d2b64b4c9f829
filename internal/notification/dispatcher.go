package notification

import (
	"context"
	"encoding/json"
	"log"

	"vital-backend/internal/push"
	"vital-backend/pkg/models"
)

// Sender é o cliente de entrega de push (implementado por *push.Service).
type Sender interface {
	Send(ctx context.Context, sub models.PushSubscription, payload []byte) error
	Enabled() bool
}

// SubscriptionStore é a parcela do banco que o dispatcher usa para remover
// endpoints expirados.
type SubscriptionStore interface {
	DeleteSubscriptionByID(ctx context.Context, id string) error
}

// DispatchResult agrega o resultado do fan-out: Sent + Failed é sempre igual
// ao total de destinatários tentados.
type DispatchResult struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

type Dispatcher struct {
	sender Sender
	store  SubscriptionStore
}

func NewDispatcher(sender Sender, store SubscriptionStore) *Dispatcher {
	return &Dispatcher{sender: sender, store: store}
}

// Enabled repassa o estado do cliente de push.
func (d *Dispatcher) Enabled() bool {
	return d.sender.Enabled()
}

// Dispatch envia o payload para cada destinatário. Cada tentativa é isolada:
// a falha de um dispositivo não impede a entrega aos demais. Endpoint
// reportado como expirado (410/404) é removido do banco na hora.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload, recipients []models.PushSubscription) DispatchResult {
	result := DispatchResult{Errors: []string{}}

	payload, err := json.Marshal(p)
	if err != nil {
		result.Failed = len(recipients)
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for _, sub := range recipients {
		if err := d.sender.Send(ctx, sub, payload); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err.Error())

			if push.IsGone(err) {
				if delErr := d.store.DeleteSubscriptionByID(ctx, sub.ID); delErr != nil {
					log.Printf("❌ Erro ao remover subscription expirada %s: %v", sub.ID, delErr)
				} else {
					log.Printf("🗑️  Subscription expirada removida: %s", sub.ID)
				}
			}
			continue
		}

		result.Sent++
	}

	return result
}
