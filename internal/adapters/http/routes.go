package web

import "net/http"

// registerRoutes attaches all API handlers to the mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/register", handleRegister)
	mux.HandleFunc("/api/registration-count", handleRegistrationCount)
	mux.HandleFunc("/api/upload", handleUpload)
	mux.HandleFunc("/api/health", handleHealth)
	mux.HandleFunc("/api/admin/registrations", handleAdminRegistrations)
	mux.HandleFunc("/api/admin/perf", handleAdminPerf)
}
