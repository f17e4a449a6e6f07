package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/andes-sport/backend-tienda/internal/common"
)

// AdminGuard verifies HS256 bearer tokens issued by the back-office identity
// service and requires the admin role claim. Token issuance lives outside
// this service; only verification happens here.
type AdminGuard struct {
	Secret []byte
	Now    func() time.Time
}

const roleClaim = "role"

func (g AdminGuard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Require rejects requests without a valid admin token.
func (g AdminGuard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(g.Secret) == 0 {
			common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "admin guard not configured", nil)
			return
		}
		raw := extractBearer(r)
		if raw == "" {
			common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "missing or invalid token", nil)
			return
		}
		token, err := jwt.ParseString(raw,
			jwt.WithKey(jwa.HS256, g.Secret),
			jwt.WithValidate(true),
			jwt.WithClock(jwt.ClockFunc(g.now)),
		)
		if err != nil {
			common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "missing or invalid token", nil)
			return
		}
		role, _ := token.Get(roleClaim)
		if s, ok := role.(string); !ok || s != "admin" {
			common.JSONError(w, http.StatusForbidden, common.CodeForbidden, "admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearer(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
