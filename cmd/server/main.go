package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"regdesk/internal/adapters/blob"
	emailPkg "regdesk/internal/adapters/email"
	web "regdesk/internal/adapters/http"
	"regdesk/internal/adapters/http/middleware"
	"regdesk/internal/adapters/http/perf"
	"regdesk/internal/adapters/storage"
	registrationStore "regdesk/internal/adapters/storage/registration"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load .env in development; production configures the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("REGDESK_DB_PATH", "regdesk.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	// Run database migrations
	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	stores := &web.Stores{
		RegistrationStore: registrationStore.NewSQLiteStore(timedDB),
	}
	web.SetDBPinger(timedDB)

	// Payment-slip blob storage, served back at /files/
	dataDir := envOrDefault("REGDESK_DATA_DIR", "data")
	baseURL := strings.TrimSuffix(envOrDefault("REGDESK_BASE_URL", "http://localhost:8080"), "/")
	web.SetBlobStore(blob.NewLocalStore(dataDir, baseURL+"/files"))

	// Admin token guard. Without a token, admin endpoints stay locked.
	adminToken := os.Getenv("REGDESK_ADMIN_TOKEN")
	guard, err := middleware.NewAdminGuard(adminToken)
	if err != nil {
		log.Fatalf("failed to configure admin guard: %v", err)
	}
	web.SetAdminGuard(guard)
	if adminToken == "" {
		log.Println("WARNING: REGDESK_ADMIN_TOKEN is not set, admin endpoints are disabled")
	}

	// Configure confirmation email sender
	eventName := envOrDefault("REGDESK_EVENT_NAME", "APLLS Convention")
	resendKey := os.Getenv("REGDESK_RESEND_KEY")
	emailFrom := envOrDefault("REGDESK_RESEND_FROM", "Registrations <noreply@aplls.example.org>")
	emailReply := envOrDefault("REGDESK_REPLY_TO", "registrations@aplls.example.org")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply, eventName)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply, eventName)
		if os.Getenv("REGDESK_ENV") == "production" {
			log.Println("WARNING: REGDESK_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set REGDESK_RESEND_KEY for real delivery)")
		}
	}

	// Create HTTP handler with middleware (pass collector for timing + perf endpoint)
	mux := web.NewMux("static", dataDir, stores, collector)

	// Start server
	addr := envOrDefault("REGDESK_ADDR", ":8080")
	log.Printf("Regdesk %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("REGDESK_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
