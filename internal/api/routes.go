package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"flashcards_go_backend/internal/auth"
	apperrors "flashcards_go_backend/internal/errors"
	"flashcards_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxUploadBytes caps PDF uploads; the extracted text is still subject to the
// generation input limit.
const maxUploadBytes = 10 << 20

type Services struct {
	Ledger      *services.QuotaLedger
	Generation  *services.GenerationService
	Checkout    *services.CheckoutService
	Collections *services.CollectionService
}

func SetupRoutes(r *gin.Engine, authMiddleware gin.HandlerFunc, svc Services, allowedOrigins []string) {
	api := r.Group("/api")
	{
		api.GET("/plans", listPlansHandler)
		api.GET("/generations", authMiddleware, getGenerationsHandler(svc.Ledger))
		api.POST("/generate", authMiddleware, generateHandler(svc.Generation))
		api.POST("/checkout", authMiddleware, createCheckoutHandler(svc.Checkout, allowedOrigins))
		api.GET("/checkout", authMiddleware, confirmCheckoutHandler(svc.Checkout))

		api.GET("/collections", authMiddleware, listCollectionsHandler(svc.Collections))
		api.POST("/collections", authMiddleware, createCollectionHandler(svc.Collections))
		api.GET("/collections/:name", authMiddleware, getCollectionHandler(svc.Collections))
		api.DELETE("/collections/:name", authMiddleware, deleteCollectionHandler(svc.Collections))
		api.POST("/collections/:name/favorite", authMiddleware, toggleFavoriteHandler(svc.Collections))
		api.GET("/collections/:name/export.pdf", authMiddleware, exportCollectionHandler(svc.Collections))
	}
}

// SetupHealthRoute registers GET /health. check reports whether the
// backing stores are reachable.
func SetupHealthRoute(r *gin.Engine, check func(ctx context.Context) error) {
	r.GET("/health", func(c *gin.Context) {
		if err := check(c.Request.Context()); err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func listPlansHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": services.Plans})
}

func getGenerationsHandler(ledger *services.QuotaLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		remaining, err := ledger.GetRemaining(c.Request.Context(), auth.UserID(c))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"generations_left": remaining})
	}
}

// generateHandler accepts the source text as a raw text body, as JSON
// {"text": "..."} or as a PDF uploaded in the multipart field "file".
func generateHandler(generationService *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		text, err := readGenerationInput(c, generationService.MaxInputBytes())
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		result, err := generationService.Generate(c.Request.Context(), auth.UserID(c), text)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func readGenerationInput(c *gin.Context, maxInputBytes int64) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
		fileHeader, err := c.FormFile("file")
		if err != nil {
			if bodyTooLarge(err) {
				return "", apperrors.New400Error(fmt.Sprintf("Uploaded file is too large, the limit is %d MB", maxUploadBytes>>20))
			}
			return "", apperrors.New400Error("A PDF file is required in the 'file' field")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return "", apperrors.New400Error("Failed to read uploaded file")
		}
		defer file.Close()
		return services.ExtractPDFText(file, fileHeader.Size)

	case "application/json":
		var request struct {
			Text string `json:"text"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			return "", apperrors.New400Error("Invalid request body")
		}
		return request.Text, nil

	default:
		// One byte over the limit is enough for the service to reject it.
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInputBytes+1))
		if err != nil {
			return "", apperrors.New400Error("Failed to read request body")
		}
		return string(body), nil
	}
}

func createCheckoutHandler(checkoutService *services.CheckoutService, allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Plan string `json:"plan"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid request body"))
			return
		}

		returnURL := ""
		if origin := c.GetHeader("Origin"); isAllowedOrigin(origin, allowedOrigins) {
			returnURL = origin
		}

		session, err := checkoutService.CreateCheckout(c.Request.Context(), auth.UserID(c), request.Plan, returnURL)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func confirmCheckoutHandler(checkoutService *services.CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		confirmation, err := checkoutService.ConfirmCheckout(c.Request.Context(), auth.UserID(c), c.Query("session_id"))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, confirmation)
	}
}

func isAllowedOrigin(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	for _, o := range allowed {
		if strings.EqualFold(strings.TrimRight(o, "/"), strings.TrimRight(origin, "/")) {
			return true
		}
	}
	return false
}

// bodyTooLarge reports whether err came from http.MaxBytesReader.
func bodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
