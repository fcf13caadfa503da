package auth

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

type ctxKey int

const claimsKey ctxKey = iota

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// Claims contains the verified token details the API uses.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	Email     string
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// UserID returns the id set by Middleware, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
