package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"regdesk/internal/application/orchestrators"
	"regdesk/internal/application/projections"
	"regdesk/internal/domain/registration"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// flexBool accepts the loose truthiness the registration form produces:
// JSON booleans, "Yes"/"No", "true"/"false", "on", "1", empty string, null.
type flexBool bool

// UnmarshalJSON implements json.Unmarshaler.
// POST: unrecognized strings decode as false, never an error
func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch s := strings.Trim(string(data), `"`); strings.ToLower(s) {
	case "true", "yes", "on", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeJSONError writes the error envelope shared by all API endpoints.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

// writeOrchestratorError maps orchestrator errors to the API error taxonomy.
// Validation failures surface their message; internal failures do not leak details.
func writeOrchestratorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registration.ErrDuplicateEmail):
		writeJSONError(w, http.StatusConflict, registration.ErrDuplicateEmail.Error())
	case errors.Is(err, orchestrators.ErrValidation):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("internal_error", "error", err.Error())
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// methodNotAllowed writes the 405 envelope.
func methodNotAllowed(w http.ResponseWriter) {
	writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// paymentSlipPayload is the nested inline-slip object on the register request.
type paymentSlipPayload struct {
	FileData string `json:"fileData"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

// registerRequest mirrors the field names the registration form submits.
type registerRequest struct {
	FirstName               string              `json:"firstName"`
	LastName                string              `json:"lastName"`
	FullName                string              `json:"fullName"`
	Email                   string              `json:"email"`
	Phone                   string              `json:"phone"`
	ClubName                string              `json:"clubName"`
	District                string              `json:"district"`
	OtherDistrict           string              `json:"otherDistrict"`
	Position                string              `json:"position"`
	PPOASPosition           string              `json:"ppoasPosition"`
	DistrictCabinetPosition string              `json:"districtCabinetPosition"`
	ClubPosition            string              `json:"clubPosition"`
	PositionInNGO           string              `json:"positionInNgo"`
	RegistrationType        string              `json:"registrationType"`
	Gender                  string              `json:"gender"`
	Address                 string              `json:"address"`
	Vegetarian              flexBool            `json:"vegetarian"`
	PoolsideParty           flexBool            `json:"poolsideParty"`
	CommunityService        flexBool            `json:"communityService"`
	InstallationBanquet     flexBool            `json:"installationBanquet"`
	TermsConditions         flexBool            `json:"termsConditions"`
	MarketingEmails         flexBool            `json:"marketingEmails"`
	PrivacyPolicy           flexBool            `json:"privacyPolicy"`
	PaymentSlip             *paymentSlipPayload `json:"paymentSlip"`
	PaymentSlipURL          string              `json:"paymentSlipUrl"`
}

// handleRegister handles /api/register.
// POST submits a registration; GET answers a service status probe.
// PRE: POST body is JSON in the registration form shape
// POST: 200 with the stored registration summary, or the taxonomy error
func handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		body := map[string]any{
			"message":   "Registration API is operational",
			"status":    "ready",
			"timestamp": timeNow().UTC().Format(time.RFC3339),
		}
		counts, err := projections.QueryGetRegistrationCounts(ctx, projections.GetRegistrationCountsDeps{
			RegistrationStore: stores.RegistrationStore,
			Now:               timeNow,
		})
		if err == nil {
			body["counts"] = countsPayload(counts)
		}
		writeJSON(w, http.StatusOK, body)
		return
	}
	if r.Method != "POST" {
		methodNotAllowed(w)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input := orchestrators.SubmitRegistrationInput{
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		FullName:                req.FullName,
		Email:                   req.Email,
		Phone:                   req.Phone,
		ClubName:                req.ClubName,
		District:                req.District,
		OtherDistrict:           req.OtherDistrict,
		Gender:                  req.Gender,
		Address:                 req.Address,
		Position:                req.Position,
		PPOASPosition:           req.PPOASPosition,
		DistrictCabinetPosition: req.DistrictCabinetPosition,
		ClubPosition:            req.ClubPosition,
		PositionInNGO:           req.PositionInNGO,
		Tier:                    req.RegistrationType,
		PoolsideParty:           bool(req.PoolsideParty),
		CommunityService:        bool(req.CommunityService),
		InstallationBanquet:     bool(req.InstallationBanquet),
		Vegetarian:              bool(req.Vegetarian),
		TermsAccepted:           bool(req.TermsConditions),
		PrivacyAgreed:           bool(req.PrivacyPolicy),
		MarketingOptIn:          bool(req.MarketingEmails),
		PaymentSlipURL:          req.PaymentSlipURL,
	}
	if req.PaymentSlip != nil {
		input.PaymentSlipDataURI = req.PaymentSlip.FileData
		input.PaymentSlipFileName = req.PaymentSlip.FileName
		input.PaymentSlipFileType = req.PaymentSlip.FileType
	}

	reg, err := orchestrators.ExecuteSubmitRegistration(ctx, input, orchestrators.SubmitRegistrationDeps{
		RegistrationStore: stores.RegistrationStore,
		BlobStore:         blobStore,
		Confirmation:      confirmationDeps,
		Now:               timeNow,
	})
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Registration saved successfully",
		"data": map[string]any{
			"registrationId":   reg.Code,
			"databaseId":       reg.ID,
			"fullName":         reg.FullName(),
			"email":            reg.Email,
			"clubName":         reg.ClubName,
			"district":         reg.District,
			"registrationType": reg.Tier,
			"registrationFee":  reg.TierFee,
			"optionalFee":      reg.AddOnFee,
			"totalAmount":      reg.TotalAmount,
			"status":           reg.Status,
			"paymentSlipUrl":   reg.PaymentSlipURL,
			"timestamp":        reg.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

// handleRegistrationCount handles GET /api/registration-count.
// Public aggregate counts for the registration progress display.
func handleRegistrationCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		methodNotAllowed(w)
		return
	}

	counts, err := projections.QueryGetRegistrationCounts(r.Context(), projections.GetRegistrationCountsDeps{
		RegistrationStore: stores.RegistrationStore,
		Now:               timeNow,
	})
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"counts":  countsPayload(counts),
	})
}

// countsPayload shapes the public aggregate view shared by the count endpoint
// and the register status probe.
func countsPayload(counts projections.RegistrationCounts) map[string]any {
	return map[string]any{
		"total":                 counts.Total,
		"confirmed":             counts.ByStatus[registration.StatusConfirmed],
		"pending":               counts.ByStatus[registration.StatusPending],
		"recent":                counts.Recent24h,
		"early_bird":            counts.EarlyBirdCount,
		"early_bird_cap":        counts.EarlyBirdCap,
		"early_bird_remaining":  counts.EarlyBirdRemaining,
		"early_bird_percentage": counts.EarlyBirdPercentage,
	}
}

// uploadRequest is the standalone payment-slip upload body.
type uploadRequest struct {
	FileData string `json:"fileData"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

// handleUpload handles POST /api/upload.
// Accepts a base64 data URI and returns the public URL of the stored slip.
func handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		methodNotAllowed(w)
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FileData == "" || req.FileName == "" || req.FileType == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing required fields: fileData, fileName, fileType")
		return
	}

	stored, err := orchestrators.ExecuteUploadSlip(r.Context(), orchestrators.UploadSlipInput{
		FileName:    req.FileName,
		ContentType: req.FileType,
		DataURI:     req.FileData,
	}, orchestrators.UploadSlipDeps{BlobStore: blobStore})
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "File uploaded successfully",
		"file": map[string]any{
			"name": stored.Name,
			"url":  stored.URL,
			"type": req.FileType,
			"size": stored.Size,
		},
	})
}

// handleHealth handles GET /api/health. Liveness probe with a DB ping.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		methodNotAllowed(w)
		return
	}
	if dbPinger != nil {
		if err := dbPinger.Ping(); err != nil {
			slog.Error("health_db_ping_failed", "error", err.Error())
			writeJSONError(w, http.StatusInternalServerError, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": timeNow().UTC().Format(time.RFC3339),
	})
}

// handleAdminRegistrations handles GET /api/admin/registrations.
// Requires the X-Admin-Token header; returns all rows plus statistics.
func handleAdminRegistrations(w http.ResponseWriter, r *http.Request) {
	if adminGuard == nil || !adminGuard.Authorize(r) {
		writeJSONError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}
	if r.Method != "GET" {
		methodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	query := projections.GetAdminRegistrationsQuery{
		Tier:   q.Get("tier"),
		Status: q.Get("status"),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		query.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		query.Offset = v
	}

	result, err := projections.QueryGetAdminRegistrations(r.Context(), query, projections.GetAdminRegistrationsDeps{
		RegistrationStore: stores.RegistrationStore,
		Now:               timeNow,
	})
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}

	rows := make([]map[string]any, 0, len(result.Registrations))
	for _, reg := range result.Registrations {
		rows = append(rows, map[string]any{
			"registration_id":   reg.Code,
			"full_name":         reg.FullName(),
			"email":             reg.Email,
			"phone":             reg.Phone,
			"club_name":         reg.ClubName,
			"district":          reg.District,
			"position":          reg.Position,
			"registration_type": reg.Tier,
			"total_amount":      reg.TotalAmount,
			"status":            reg.Status,
			"created_at":        reg.CreatedAt.UTC().Format(time.RFC3339),
			"payment_slip_url":  reg.PaymentSlipURL,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"registrations": rows,
		"statistics": map[string]any{
			"total_registrations":  result.Counts.Total,
			"early_bird_count":     result.Counts.EarlyBirdCount,
			"standard_count":       result.Counts.ByTier["standard"],
			"late_count":           result.Counts.ByTier["late"],
			"recent_24h_count":     result.Counts.Recent24h,
			"total_revenue":        result.Counts.Revenue,
			"confirmed_count":      result.Counts.ByStatus[registration.StatusConfirmed],
			"pending_count":        result.Counts.ByStatus[registration.StatusPending],
			"early_bird_remaining": result.Counts.EarlyBirdRemaining,
		},
	})
}

// handleAdminPerf handles GET /api/admin/perf.
// Returns aggregated request and query timings from the ring buffer.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if adminGuard == nil || !adminGuard.Authorize(r) {
		writeJSONError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}
	if r.Method != "GET" {
		methodNotAllowed(w)
		return
	}
	if perfCollector == nil {
		writeJSONError(w, http.StatusInternalServerError, "perf collection disabled")
		return
	}

	since := timeNow().Add(-time.Hour)
	if v, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && v > 0 {
		since = timeNow().Add(-time.Duration(v) * time.Minute)
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, 10))
}
