package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Web Push (VAPID)
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	// Scheduler
	SchedulerIntervalSeconds int
	NotificarApenasPendentes bool // só notifica se a solicitação ainda está pendente

	// Email fallback
	EnableEmailFallback bool
	AlertEmail          string

	// SMTP
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️  Info: Ficheiro .env não encontrado ou não pôde ser carregado. Lendo variáveis de ambiente do sistema.")
	}

	return &Config{
		// Server
		Port:        getEnvWithDefault("PORT", "3001"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Web Push
		VAPIDPublicKey:  cleanVAPIDKey(os.Getenv("VAPID_PUBLIC_KEY")),
		VAPIDPrivateKey: cleanVAPIDKey(os.Getenv("VAPID_PRIVATE_KEY")),
		VAPIDSubject:    getEnvWithDefault("VAPID_SUBJECT", "mailto:suporte@appvital.com.br"),

		// Scheduler
		SchedulerIntervalSeconds: getEnvInt("SCHEDULER_INTERVAL_SECONDS", 60),
		NotificarApenasPendentes: getEnvBool("NOTIFICAR_APENAS_PENDENTES", false),

		// Email fallback
		EnableEmailFallback: getEnvBool("ENABLE_EMAIL_FALLBACK", false),
		AlertEmail:          os.Getenv("ALERT_EMAIL"),

		// SMTP
		SMTPHost:      getEnvWithDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  getEnvWithDefault("SMTP_FROM_NAME", "VITAL - Sistema de Triagem"),
		SMTPFromEmail: getEnvWithDefault("SMTP_FROM_EMAIL", "suporte@appvital.com.br"),
	}, nil
}

// cleanVAPIDKey remove espaços, quebras de linha e padding '=' que costumam
// entrar junto quando a chave é copiada para a variável de ambiente.
func cleanVAPIDKey(key string) string {
	key = strings.TrimSpace(key)
	replacer := strings.NewReplacer(" ", "", "\r", "", "\n", "", "\t", "", "=", "")
	return replacer.Replace(key)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// Validate valida se todas as configurações obrigatórias estão presentes
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.VAPIDPublicKey == "" || c.VAPIDPrivateKey == "" {
		log.Println("⚠️  VAPID keys não configuradas - Web Push desabilitado")
	}

	if c.EnableEmailFallback && (c.SMTPUsername == "" || c.SMTPPassword == "") {
		log.Println("⚠️  Email fallback habilitado mas credenciais SMTP não configuradas")
	}

	return nil
}

// WebPushEnabled indica se o subsistema de push pode operar.
func (c *Config) WebPushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
