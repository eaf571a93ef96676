package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"regdesk/internal/adapters/blob"
	"regdesk/internal/adapters/email"
	"regdesk/internal/adapters/http/middleware"
	"regdesk/internal/adapters/http/perf"
	registrationStore "regdesk/internal/adapters/storage/registration"
	"regdesk/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	RegistrationStore registrationStore.Store
}

// loadCSRFKey reads the CSRF secret from REGDESK_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("REGDESK_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("REGDESK_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("REGDESK_ENV") == "production" {
		log.Fatal("REGDESK_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (form sessions won't survive restart). Set REGDESK_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global blob store for payment slips (set by SetBlobStore)
var blobStore blob.Store

// Global admin credential guard (set by SetAdminGuard)
var adminGuard *middleware.AdminGuard

// Confirmation email wiring; nil disables the confirmation email.
var confirmationDeps *orchestrators.ConfirmationDeps

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping() error
}

var dbPinger Pinger

// SetEmailSender wires the confirmation email for registration submissions.
func SetEmailSender(sender email.Sender, from, replyTo, eventName string) {
	confirmationDeps = &orchestrators.ConfirmationDeps{
		Sender:      sender,
		FromAddress: from,
		ReplyTo:     replyTo,
		EventName:   eventName,
	}
}

// SetBlobStore wires the payment-slip blob store.
func SetBlobStore(store blob.Store) {
	blobStore = store
}

// SetAdminGuard wires the admin token guard.
func SetAdminGuard(g *middleware.AdminGuard) {
	adminGuard = g
}

// SetDBPinger wires the storage liveness check for /api/health.
func SetDBPinger(p Pinger) {
	dbPinger = p
}

// NewMux wires HTTP handlers for the app.
// staticDir serves the registration form; uploadsDir is exposed at /files/
// so stored payment slips resolve to public URLs.
func NewMux(staticDir, uploadsDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	mux.Handle("/files/", http.StripPrefix("/files/", http.FileServer(http.Dir(uploadsDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> CORS -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.CORS,
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
