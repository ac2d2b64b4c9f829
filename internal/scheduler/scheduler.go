package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"vital-backend/internal/config"
	"vital-backend/internal/database"
	"vital-backend/internal/email"
	"vital-backend/internal/notification"
	"vital-backend/pkg/models"
)

// Store é a parcela do banco que o pipeline usa.
type Store interface {
	DueReminders(ctx context.Context, now time.Time, limit int) ([]models.NotificacaoAgendada, error)
	ClaimReminder(ctx context.Context, id string) (bool, error)
	FinishReminder(ctx context.Context, id string, erro *string) error
	SubscriptionsByHospital(ctx context.Context, hospitalID string) ([]models.PushSubscription, error)
	GetSolicitacao(ctx context.Context, id string) (*models.Solicitacao, error)
}

// Resultado agrega o desfecho de um tick do pipeline.
type Resultado struct {
	Processadas int `json:"processadas"`
	Erros       int `json:"erros"`
}

// Status reporta o estado do job para as rotas de status.
type Status struct {
	JobRunning  bool `json:"jobRunning"`
	DBConnected bool `json:"dbConnected"`
}

// Scheduler dirige o pipeline de notificações agendadas: varre lembretes
// vencidos, resolve os dispositivos do hospital, dispara o fan-out e registra
// o desfecho. Uma execução imediata na partida e depois a cada intervalo fixo.
type Scheduler struct {
	cfg        *config.Config
	store      Store
	dispatcher *notification.Dispatcher
	email      *email.Service
	interval   time.Duration
	stopChan   chan struct{}

	mu      sync.Mutex
	running bool
	lastRun time.Time
}

func NewScheduler(cfg *config.Config, store Store, dispatcher *notification.Dispatcher, emailService *email.Service) *Scheduler {
	interval := time.Duration(cfg.SchedulerIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	return &Scheduler{
		cfg:        cfg,
		store:      store,
		dispatcher: dispatcher,
		email:      emailService,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start executa o pipeline imediatamente e depois a cada intervalo, até o
// contexto ser cancelado ou Stop ser chamado.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	log.Printf("⏰ Job de notificações agendadas iniciado (intervalo: %v)", s.interval)

	s.runTick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.setRunning(false)
			return
		case <-s.stopChan:
			s.setRunning(false)
			log.Println("🛑 Job de notificações agendadas parado")
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

// GetStatus reporta se o timer está armado e se há conexão com o banco.
func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		JobRunning:  s.running,
		DBConnected: s.store != nil,
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	resultado := s.ProcessarPendentes(ctx)
	if resultado.Processadas > 0 || resultado.Erros > 0 {
		log.Printf("📊 Notificações agendadas: %d enviadas, %d erros", resultado.Processadas, resultado.Erros)
	}
}

// ProcessarPendentes executa um tick completo do pipeline. Nenhum erro escapa
// daqui: falha de banco aborta o tick com log, falha por lembrete conta em
// Erros e o processamento dos demais continua.
func (s *Scheduler) ProcessarPendentes(ctx context.Context) Resultado {
	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()

	var resultado Resultado

	notificacoes, err := s.store.DueReminders(ctx, time.Now(), database.BatchLimit)
	if err != nil {
		log.Printf("❌ Erro ao buscar notificações pendentes: %v", err)
		return resultado
	}

	if len(notificacoes) == 0 {
		return resultado
	}

	log.Printf("🔔 %d notificações para processar", len(notificacoes))

	for _, notif := range notificacoes {
		enviou, err := s.processarNotificacao(ctx, notif)
		if err != nil {
			log.Printf("❌ Erro ao processar notificação %s: %v", notif.ID, err)
			resultado.Erros++
			continue
		}
		if enviou {
			resultado.Processadas++
		}
	}

	return resultado
}

// processarNotificacao trata um único lembrete. O claim condicional
// (enviada false → true) acontece antes de qualquer envio: se outro tick ou
// outra instância já reivindicou a linha, o lembrete é pulado e nada é
// entregue duas vezes. Retorna true quando pelo menos um dispositivo recebeu.
func (s *Scheduler) processarNotificacao(ctx context.Context, notif models.NotificacaoAgendada) (bool, error) {
	claimed, err := s.store.ClaimReminder(ctx, notif.ID)
	if err != nil {
		// A linha continua enviada=false e volta na próxima varredura.
		return false, fmt.Errorf("falha ao reivindicar: %w", err)
	}
	if !claimed {
		log.Printf("⏭️  Notificação %s já reivindicada por outro tick", notif.ID)
		return false, nil
	}

	if notif.HospitalID == nil || *notif.HospitalID == "" {
		log.Printf("⚠️  Notificação %s sem hospital_id", notif.ID)
		s.finish(ctx, notif.ID, strPtr("sem hospital_id"))
		return false, nil
	}
	hospitalID := *notif.HospitalID

	if s.cfg.NotificarApenasPendentes {
		if suprimida, anotacao := s.statusGate(ctx, notif.SolicitacaoID); suprimida {
			s.finish(ctx, notif.ID, anotacao)
			return false, nil
		}
	}

	subscriptions, err := s.store.SubscriptionsByHospital(ctx, hospitalID)
	if err != nil {
		// Já reivindicada; registra a anotação para auditoria em vez de reenviar.
		s.finish(ctx, notif.ID, strPtr(fmt.Sprintf("erro ao buscar subscriptions: %v", err)))
		return false, fmt.Errorf("falha ao buscar subscriptions: %w", err)
	}

	payload := notification.BuildFromReminder(notif)

	var anotacao *string
	enviou := false

	if len(subscriptions) > 0 && s.dispatcher.Enabled() {
		log.Printf("📤 Enviando para %d dispositivos do hospital %s", len(subscriptions), hospitalID)
		result := s.dispatcher.Dispatch(ctx, payload, subscriptions)
		enviou = result.Sent > 0

		if result.Failed > 0 {
			anotacao = strPtr(fmt.Sprintf("%d de %d envios falharam", result.Failed, result.Sent+result.Failed))
		}
	} else {
		log.Printf("ℹ️  Nenhuma subscription ou Web Push indisponível (hospital %s)", hospitalID)
	}

	if !enviou {
		s.emailFallback(payload, notif.SolicitacaoID)
	}

	s.finish(ctx, notif.ID, anotacao)
	return enviou, nil
}

// statusGate suprime o lembrete quando a solicitação já saiu do estado
// pendente (modo estrito, opcional).
func (s *Scheduler) statusGate(ctx context.Context, solicitacaoID string) (bool, *string) {
	sol, err := s.store.GetSolicitacao(ctx, solicitacaoID)
	if err != nil {
		// Sem a solicitação não dá para decidir; segue o fluxo normal.
		log.Printf("⚠️  Gate de status indisponível para %s: %v", solicitacaoID, err)
		return false, nil
	}

	if sol.Status != "pendente" {
		log.Printf("⏭️  Solicitação %s com status %q, notificação suprimida", solicitacaoID, sol.Status)
		return true, strPtr(fmt.Sprintf("suprimida: solicitação com status %q", sol.Status))
	}

	return false, nil
}

func (s *Scheduler) finish(ctx context.Context, id string, erro *string) {
	if err := s.store.FinishReminder(ctx, id, erro); err != nil {
		log.Printf("❌ Erro ao registrar conclusão da notificação %s: %v", id, err)
	}
}

// emailFallback avisa o endereço de plantão quando nenhum dispositivo recebeu
// o push. Inerte sem serviço de email ou sem endereço configurado.
func (s *Scheduler) emailFallback(payload notification.Payload, solicitacaoID string) {
	if s.email == nil || s.cfg.AlertEmail == "" {
		return
	}

	if err := s.email.SendReavaliacaoAlert(s.cfg.AlertEmail, payload.Title, payload.Body, solicitacaoID); err != nil {
		log.Printf("❌ Fallback de email falhou: %v", err)
	}
}

func strPtr(s string) *string {
	return &s
}
