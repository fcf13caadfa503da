package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCustomError_Is(t *testing.T) {
	err := fmt.Errorf("saving: %w", NewDuplicateNameError("Algebra"))

	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.NotErrorIs(t, err, ErrNotFound)

	internal := stderrors.New("connection refused")
	assert.ErrorIs(t, NewUpstreamUnavailableError("store down", internal), internal)
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"quota", NewQuotaExhaustedError(), http.StatusPaymentRequired, `{"error":{"type":"QUOTA_EXHAUSTED","message":"No generations left. Please upgrade your plan."}}`},
		{"plan", NewInvalidPlanError("gold"), http.StatusBadRequest, `{"error":{"type":"INVALID_PLAN","message":"Invalid subscription plan: gold"}}`},
		{"wrapped", fmt.Errorf("outer: %w", New401Error()), http.StatusUnauthorized, `{"error":{"type":"UNAUTHENTICATED","message":"Authentication required"}}`},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError, `{"error":{"type":"INTERNAL_SERVER_ERROR","message":"An unexpected error occurred"}}`},
		{"sentinel", ErrNotFound, http.StatusInternalServerError, `{"error":{"type":"INTERNAL_SERVER_ERROR","message":"An unexpected error occurred"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			assert.True(t, c.IsAborted())
		})
	}
}
