package application

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/bnema/shopvoice/internal/domain"
)

// Context keys consulted when deriving a session key.
var (
	UserIdentityKeys = []string{"userId", "userEmail", "email"}
	RouteKeys        = []string{"route", "path", "currentPage"}
)

// ResolveSessionKey groups commands into a conversation. Signed-in users are
// keyed by identity; anonymous visitors by a hash of their route and the
// client-provided fingerprint.
func ResolveSessionKey(req domain.CommandRequest) string {
	for _, key := range UserIdentityKeys {
		if id := req.Context.String(key); id != "" {
			return "user:" + strings.ToLower(id)
		}
	}

	route := ""
	for _, key := range RouteKeys {
		if route = req.Context.String(key); route != "" {
			break
		}
	}

	raw := route + "|" + strings.TrimSpace(req.SessionID)
	hash := sha1.Sum([]byte(raw))
	return "anon:" + hex.EncodeToString(hash[:])
}
