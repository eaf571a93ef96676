package middleware

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// AdminTokenHeader carries the shared admin credential on API requests.
const AdminTokenHeader = "X-Admin-Token"

// AdminGuard verifies the admin token header against a bcrypt hash of the
// configured token. Only the hash is held in memory.
type AdminGuard struct {
	tokenHash []byte
}

// NewAdminGuard hashes the configured token. An empty token disables admin
// access entirely rather than allowing unauthenticated requests through.
func NewAdminGuard(token string) (*AdminGuard, error) {
	if token == "" {
		return &AdminGuard{}, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AdminGuard{tokenHash: hash}, nil
}

// Authorize reports whether the request carries the correct admin token.
// PRE: g was built by NewAdminGuard
// POST: false whenever no token is configured or the header does not match
func (g *AdminGuard) Authorize(r *http.Request) bool {
	if len(g.tokenHash) == 0 {
		return false
	}
	presented := r.Header.Get(AdminTokenHeader)
	if presented == "" {
		return false
	}
	if err := bcrypt.CompareHashAndPassword(g.tokenHash, []byte(presented)); err != nil {
		slog.Warn("admin_token_rejected", "ip", r.RemoteAddr)
		return false
	}
	return true
}
