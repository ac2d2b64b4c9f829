package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"vital-backend/internal/config"
	"vital-backend/internal/database"
	"vital-backend/internal/email"
	"vital-backend/internal/notification"
	"vital-backend/internal/push"
	"vital-backend/internal/scheduler"
)

var (
	cfg         *config.Config
	db          *database.DB
	pushService *push.Service
	dispatcher  *notification.Dispatcher
	sched       *scheduler.Scheduler
	startTime   time.Time
	serverLogs  []string
	logsMutex   sync.RWMutex
)

const maxLogs = 100

type logWriter struct{}

func (lw logWriter) Write(p []byte) (n int, err error) {
	logsMutex.Lock()
	defer logsMutex.Unlock()

	msg := string(p)
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}

	timestamp := time.Now().Format("15:04:05")
	logEntry := fmt.Sprintf("[%s] %s", timestamp, msg)

	serverLogs = append(serverLogs, logEntry)
	if len(serverLogs) > maxLogs {
		serverLogs = serverLogs[1:]
	}

	// Imprimir no console também
	fmt.Println(logEntry)

	return len(p), nil
}

func main() {
	log.SetFlags(0)
	log.SetOutput(logWriter{})

	startTime = time.Now()
	log.Println("🚀 Iniciando VITAL Backend...")

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("❌ Erro config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuração inválida: %v", err)
	}

	db, err = database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Erro DB: %v", err)
	}
	defer db.Close()

	pushService = push.NewService(cfg)
	dispatcher = notification.NewDispatcher(pushService, db)

	var emailService *email.Service
	if cfg.EnableEmailFallback {
		emailService, err = email.NewService(cfg)
		if err != nil {
			log.Printf("⚠️  Email fallback não configurado: %v", err)
			emailService = nil
		} else {
			log.Println("✅ Email fallback inicializado")
		}
	}

	sched = scheduler.NewScheduler(cfg, db, dispatcher, emailService)
	go sched.Start(context.Background())

	router := mux.NewRouter()
	router.HandleFunc("/", rootHandler).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", healthCheckHandler).Methods("GET")
	api.HandleFunc("/stats", statsHandler).Methods("GET")
	api.HandleFunc("/logs", logsHandler).Methods("GET")

	api.HandleFunc("/push/subscription", pushSubscribeHandler).Methods("POST")
	api.HandleFunc("/push/subscription", pushUnsubscribeHandler).Methods("DELETE")
	api.HandleFunc("/push/subscriptions", pushSubscriptionsHandler).Methods("GET")
	api.HandleFunc("/push/send", pushSendHandler).Methods("POST")
	api.HandleFunc("/push/status", pushStatusHandler).Methods("GET")

	api.HandleFunc("/notificacoes/processar", processarHandler).Methods("POST")
	api.HandleFunc("/notificacoes/status", notificacoesStatusHandler).Methods("GET")

	log.Printf("✅ Servidor pronto na porta %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsMiddleware(router)))
}

// --- HANDLERS BASE ---

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept")

		// Responde preflight imediatamente
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "VITAL API - Backend de Notificações",
		"status":    "online",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	httpStatus := http.StatusOK

	if err := db.Ping(ctx); err != nil {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func statsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := db != nil && db.Ping(ctx) == nil
	schedStatus := sched.GetStatus()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime":       formatDuration(time.Since(startTime)),
		"db_status":    dbStatus,
		"webpush_ok":   pushService.Enabled(),
		"job_running":  schedStatus.JobRunning,
		"db_connected": schedStatus.DBConnected,
		"timestamp":    time.Now().Unix(),
	})
}

func logsHandler(w http.ResponseWriter, r *http.Request) {
	logsMutex.RLock()
	defer logsMutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"logs": serverLogs,
	})
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
