package notification

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"vital-backend/internal/push"
	"vital-backend/pkg/models"
)

type fakeSender struct {
	enabled bool
	// erro devolvido por endpoint; endpoints ausentes entregam com sucesso
	fail     map[string]error
	attempts []string
}

func (f *fakeSender) Enabled() bool { return f.enabled }

func (f *fakeSender) Send(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	f.attempts = append(f.attempts, sub.Endpoint)
	if err, ok := f.fail[sub.Endpoint]; ok {
		return err
	}
	return nil
}

type fakeSubStore struct {
	deleted []string
}

func (f *fakeSubStore) DeleteSubscriptionByID(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func sub(id, endpoint string) models.PushSubscription {
	return models.PushSubscription{ID: id, Endpoint: endpoint, P256dh: "p", Auth: "a"}
}

func TestDispatch_ContagemConservada(t *testing.T) {
	sender := &fakeSender{enabled: true, fail: map[string]error{
		"https://push/b": errors.New("timeout"),
	}}
	store := &fakeSubStore{}
	d := NewDispatcher(sender, store)

	recipients := []models.PushSubscription{
		sub("s1", "https://push/a"),
		sub("s2", "https://push/b"),
		sub("s3", "https://push/c"),
	}

	result := d.Dispatch(context.Background(), Payload{Title: "t"}, recipients)

	if result.Sent+result.Failed != len(recipients) {
		t.Fatalf("sent(%d)+failed(%d) != total(%d)", result.Sent, result.Failed, len(recipients))
	}
	if result.Sent != 2 || result.Failed != 1 {
		t.Errorf("esperado 2 enviadas e 1 falha, veio %d/%d", result.Sent, result.Failed)
	}
	if len(result.Errors) != 1 {
		t.Errorf("esperado 1 erro registrado, veio %d", len(result.Errors))
	}
	if len(sender.attempts) != 3 {
		t.Errorf("nenhum destinatário pode ser pulado: %d tentativas", len(sender.attempts))
	}
}

func TestDispatch_EndpointGoneRemovido(t *testing.T) {
	sender := &fakeSender{enabled: true, fail: map[string]error{
		"https://push/gone": &push.DeliveryError{StatusCode: http.StatusGone},
	}}
	store := &fakeSubStore{}
	d := NewDispatcher(sender, store)

	result := d.Dispatch(context.Background(), Payload{}, []models.PushSubscription{
		sub("viva", "https://push/ok"),
		sub("morta", "https://push/gone"),
	})

	if result.Sent != 1 || result.Failed != 1 {
		t.Fatalf("esperado 1/1, veio %d/%d", result.Sent, result.Failed)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "morta" {
		t.Errorf("subscription expirada deveria ser removida, deleted=%v", store.deleted)
	}
}

func TestDispatch_ErroTransitorioNaoRemove(t *testing.T) {
	sender := &fakeSender{enabled: true, fail: map[string]error{
		"https://push/flaky": &push.DeliveryError{StatusCode: http.StatusBadGateway},
	}}
	store := &fakeSubStore{}
	d := NewDispatcher(sender, store)

	result := d.Dispatch(context.Background(), Payload{}, []models.PushSubscription{
		sub("s1", "https://push/flaky"),
	})

	if result.Failed != 1 {
		t.Fatalf("esperada 1 falha, veio %d", result.Failed)
	}
	if len(store.deleted) != 0 {
		t.Errorf("falha transitória não pode remover subscription: %v", store.deleted)
	}
}

func TestDispatch_FalhaDeUmNaoAbortaOsDemais(t *testing.T) {
	sender := &fakeSender{enabled: true, fail: map[string]error{
		"https://push/1": errors.New("boom"),
	}}
	d := NewDispatcher(sender, &fakeSubStore{})

	recipients := []models.PushSubscription{
		sub("s1", "https://push/1"),
		sub("s2", "https://push/2"),
		sub("s3", "https://push/3"),
	}

	result := d.Dispatch(context.Background(), Payload{}, recipients)

	if result.Sent != 2 {
		t.Errorf("os demais destinatários devem receber: sent=%d", result.Sent)
	}
}

func TestDispatch_SemDestinatarios(t *testing.T) {
	d := NewDispatcher(&fakeSender{enabled: true}, &fakeSubStore{})

	result := d.Dispatch(context.Background(), Payload{}, nil)

	if result.Sent != 0 || result.Failed != 0 || len(result.Errors) != 0 {
		t.Errorf("dispatch vazio deve zerar contagens: %+v", result)
	}
}
