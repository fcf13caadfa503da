package auth

import (
	"net/http"
	"strings"

	apperrors "flashcards_go_backend/internal/errors"
	"flashcards_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DevUserHeader names the caller when token checks are disabled.
const DevUserHeader = "X-User-ID"

// AuthMiddleware requires a valid bearer token and stores its subject as the
// user id. With disabled set, the id is taken from DevUserHeader instead.
func AuthMiddleware(verifier *Verifier, disabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := zerolog.Ctx(c.Request.Context())

		var claims *Claims
		if disabled {
			userID := strings.TrimSpace(c.GetHeader(DevUserHeader))
			if userID == "" {
				apperrors.HandleError(c, apperrors.New401Error())
				return
			}
			claims = &Claims{Subject: userID, Issuer: "local"}
		} else {
			if verifier == nil {
				log.Error().Msg("Auth verifier not configured")
				apperrors.HandleError(c, apperrors.New401Error())
				return
			}

			token, ok := extractBearerToken(c.GetHeader("Authorization"))
			if !ok {
				log.Debug().Str("path", c.Request.URL.Path).Msg("Missing or malformed Authorization header")
				apperrors.HandleError(c, apperrors.New401Error())
				return
			}

			var err error
			claims, err = verifier.Verify(token)
			if err != nil {
				log.Info().Err(err).Str("path", c.Request.URL.Path).Msg("Token verification failed")
				apperrors.HandleError(c, apperrors.New401Error())
				return
			}
		}

		logger := log.With().Str("user_id", claims.Subject).Logger()
		ctx := WithClaims(logger.WithContext(c.Request.Context()), claims)
		c.Request = c.Request.WithContext(ctx)
		c.Set(UserIDKey, claims.Subject)
		c.Next()
	}
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func SetupRoutes(r *gin.Engine, authMiddleware gin.HandlerFunc, ledger *services.QuotaLedger) {
	auth := r.Group("/auth")
	{
		auth.GET("/user", authMiddleware, getUser(ledger))
	}
}

func getUser(ledger *services.QuotaLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		remaining, err := ledger.GetRemaining(c.Request.Context(), userID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		resp := gin.H{
			"user_id":          userID,
			"generations_left": remaining,
		}
		if claims, ok := ClaimsFromContext(c.Request.Context()); ok && claims.Email != "" {
			resp["email"] = claims.Email
		}
		c.JSON(http.StatusOK, resp)
	}
}
