package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"vital-backend/internal/notification"
	"vital-backend/pkg/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- PUSH SUBSCRIPTIONS ---

type subscriptionRequest struct {
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
	UserID     *string `json:"user_id"`
	HospitalID *string `json:"hospital_id"`
	DeviceInfo *string `json:"device_info"`
}

func pushSubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if req.Subscription.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "Subscription inválida")
		return
	}

	if req.HospitalID != nil && *req.HospitalID != "" {
		if _, err := uuid.Parse(*req.HospitalID); err != nil {
			writeError(w, http.StatusBadRequest, "hospital_id inválido")
			return
		}
	}

	log.Printf("📱 Registrando push subscription (hospital: %v)", strValue(req.HospitalID))

	id, err := db.UpsertSubscription(r.Context(), models.PushSubscription{
		Endpoint:   req.Subscription.Endpoint,
		P256dh:     req.Subscription.Keys.P256dh,
		Auth:       req.Subscription.Keys.Auth,
		UserID:     req.UserID,
		HospitalID: req.HospitalID,
		DeviceInfo: req.DeviceInfo,
	})
	if err != nil {
		log.Printf("❌ Erro ao salvar subscription: %v", err)
		writeError(w, http.StatusInternalServerError, "Erro ao salvar subscription")
		return
	}

	log.Printf("✅ Subscription salva: %s", id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": id})
}

func pushUnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "Endpoint é obrigatório")
		return
	}

	if err := db.DeleteSubscriptionByEndpoint(r.Context(), req.Endpoint); err != nil {
		log.Printf("❌ Erro ao remover subscription: %v", err)
		writeError(w, http.StatusInternalServerError, "Erro ao remover subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func pushSubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	subs, err := db.RecentSubscriptions(r.Context(), 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type subscriptionInfo struct {
		ID         string    `json:"id"`
		Endpoint   string    `json:"endpoint"`
		HospitalID *string   `json:"hospital_id"`
		CreatedAt  time.Time `json:"created_at"`
		Device     string    `json:"device"`
	}

	infos := make([]subscriptionInfo, 0, len(subs))
	for _, sub := range subs {
		infos = append(infos, subscriptionInfo{
			ID:         sub.ID,
			Endpoint:   sub.Endpoint,
			HospitalID: sub.HospitalID,
			CreatedAt:  sub.CreatedAt,
			Device:     deviceFromEndpoint(sub.Endpoint),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":         len(infos),
		"subscriptions": infos,
	})
}

func deviceFromEndpoint(endpoint string) string {
	switch {
	case strings.Contains(endpoint, "fcm.googleapis.com"):
		return "Android/Chrome"
	case strings.Contains(endpoint, "push.apple.com"):
		return "iOS/Safari"
	case strings.Contains(endpoint, "mozilla.com"):
		return "Firefox"
	case strings.Contains(endpoint, "windows.com"):
		return "Windows/Edge"
	default:
		return "Outro"
	}
}

// --- PUSH SEND (manual + webhook) ---

type pushSendRequest struct {
	// Formato do Database Webhook: INSERT em solicitacoes
	Type   string              `json:"type"`
	Table  string              `json:"table"`
	Record *models.Solicitacao `json:"record"`

	// Formato manual
	HospitalID string                 `json:"hospital_id"`
	Title      string                 `json:"title"`
	Body       string                 `json:"body"`
	Urgency    string                 `json:"urgency"`
	Data       map[string]interface{} `json:"data"`
}

// pushSendHandler atende tanto o disparo manual quanto o webhook de criação de
// solicitação. O hospital_id é obrigatório nos dois formatos: não existe
// fallback para "todos os tenants".
func pushSendHandler(w http.ResponseWriter, r *http.Request) {
	var req pushSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if !pushService.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Web Push não configurado")
		return
	}

	var payload notification.Payload
	var hospitalID string

	if req.Type != "" && req.Record != nil {
		log.Printf("📋 Webhook de solicitação recebido (tabela: %s)", req.Table)
		if req.Record.HospitalID != nil {
			hospitalID = *req.Record.HospitalID
		}
		payload = notification.BuildFromSolicitacao(*req.Record)
	} else {
		hospitalID = req.HospitalID
		payload = manualPayload(req)
	}

	if hospitalID == "" {
		writeError(w, http.StatusBadRequest, "hospital_id é obrigatório")
		return
	}

	subscriptions, err := db.SubscriptionsByHospital(r.Context(), hospitalID)
	if err != nil {
		log.Printf("❌ Erro ao buscar subscriptions: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("📤 Enviando para %d dispositivos (hospital %s)", len(subscriptions), hospitalID)

	result := dispatcher.Dispatch(r.Context(), payload, subscriptions)

	log.Printf("✅ Enviadas: %d, Falhas: %d", result.Sent, result.Failed)
	writeJSON(w, http.StatusOK, result)
}

func manualPayload(req pushSendRequest) notification.Payload {
	title := req.Title
	if title == "" {
		title = "VITAL - Nova Notificação"
	}
	body := req.Body
	if body == "" {
		body = "Você tem uma nova atualização"
	}
	tag := "normal"
	if req.Urgency == "high" {
		tag = "urgent"
	}
	data := req.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	return notification.Payload{
		Title:              title,
		Body:               body,
		Icon:               "/icons/icon-192x192.png",
		Badge:              "/icons/icon-72x72.png",
		Tag:                tag,
		Data:               data,
		RequireInteraction: req.Urgency == "high",
	}
}

func pushStatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"enabled":         pushService.Enabled(),
		"vapidConfigured": pushService.Enabled(),
		"publicKey":       nullableString(pushService.PublicKey()),
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}

// --- NOTIFICAÇÕES AGENDADAS ---

func processarHandler(w http.ResponseWriter, r *http.Request) {
	resultado := sched.ProcessarPendentes(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"processadas": resultado.Processadas,
		"erros":       resultado.Erros,
	})
}

func notificacoesStatusHandler(w http.ResponseWriter, r *http.Request) {
	pendentes, err := db.CountReminders(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	enviadas, err := db.CountReminders(r.Context(), true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":            true,
		"pendentes":          pendentes,
		"enviadas":           enviadas,
		"webpush_disponivel": pushService.Enabled(),
		"timestamp":          time.Now().Format(time.RFC3339),
	})
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
