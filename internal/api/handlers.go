// Package api exposes the two orchestration workflows over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/claims"
	"github.com/neweco/claims-orchestrator/internal/refdata"
	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// ClaimService is the workflow surface the HTTP layer depends on.
type ClaimService interface {
	CreateFNOL(ctx context.Context, req claims.FNOLRequest) (upstream.Document, error)
	CreatePayment(ctx context.Context, req claims.PaymentRequest) (*claims.PaymentResult, error)
}

// Handlers contains the HTTP request handlers
type Handlers struct {
	service ClaimService
	logger  *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(service ClaimService, logger *zap.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// Register attaches the API routes to the router.
func (h *Handlers) Register(router *gin.Engine) {
	router.GET("/api", h.ListRoutes)
	router.POST("/travelers/claim/api-orch/v1/fnol", h.CreateFNOL)
	router.POST("/travelers/claim/api-orch/v1/payment", h.CreatePayment)
}

// ListRoutes describes the API surface.
func (h *Handlers) ListRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "200",
		"data": []gin.H{
			{"route": "/api", "method": "GET"},
			{"route": "/travelers/claim/api-orch/v1/fnol", "method": "POST"},
			{"route": "/travelers/claim/api-orch/v1/payment", "method": "POST"},
		},
	})
}

// CreateFNOL files a first notice of loss.
func (h *Handlers) CreateFNOL(c *gin.Context) {
	var req claims.FNOLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid FNOL request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	claim, err := h.service.CreateFNOL(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, "FNOL workflow failed", err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

// CreatePayment creates a payment/settlement for an existing claim.
func (h *Handlers) CreatePayment(c *gin.Context) {
	var req claims.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid payment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.service.CreatePayment(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, "Payment workflow failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// renderError maps workflow failures to status codes. Diagnostic detail stays
// in the server log; response bodies carry only a generic message.
func (h *Handlers) renderError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))

	var countErr *claims.UnexpectedResultCountError
	var lookupErr *refdata.CodeLookupError
	switch {
	case errors.As(err, &countErr):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict"})
	case errors.As(err, &lookupErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unprocessable Entity"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
