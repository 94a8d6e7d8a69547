package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inventory-service/internal/models"
	"inventory-service/internal/service"
	"inventory-service/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	ingress *service.Ingress
}

// NewHandler creates a new HTTP handler
func NewHandler(ingress *service.Ingress) *Handler {
	return &Handler{
		ingress: ingress,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/webhook", h.handleWebhook)
	router.POST("/webhook/:merchantId", h.handleLegacyWebhook)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// handleWebhook accepts the multi-merchant delivery format. The raw body is
// read before decoding because the signature covers the exact bytes sent.
func (h *Handler) handleWebhook(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable request body"})
		return
	}

	var payload models.CloverWebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		util.WebhookDeliveriesTotal.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	h.dispatchDelivery(c, &payload, rawBody)
}

// handleLegacyWebhook accepts the older per-merchant path form and
// normalizes it into the multi-merchant shape before dispatch.
func (h *Handler) handleLegacyWebhook(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable request body"})
		return
	}

	var legacy models.LegacyWebhookPayload
	if err := json.Unmarshal(rawBody, &legacy); err != nil {
		util.WebhookDeliveriesTotal.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if legacy.MerchantID == "" {
		legacy.MerchantID = c.Param("merchantId")
	}

	h.dispatchDelivery(c, legacy.Normalize(), rawBody)
}

func (h *Handler) dispatchDelivery(c *gin.Context, payload *models.CloverWebhookPayload, rawBody []byte) {
	err := h.ingress.HandleDelivery(
		c.Request.Context(),
		payload,
		rawBody,
		c.GetHeader("Clover-Signature"),
		c.GetHeader("X-Clover-Auth"),
	)

	switch {
	case err == nil:
		util.WebhookDeliveriesTotal.WithLabelValues("accepted").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, service.ErrMalformedPayload):
		util.WebhookDeliveriesTotal.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
	case errors.Is(err, service.ErrAuthFailed):
		util.WebhookDeliveriesTotal.WithLabelValues("unauthorized").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
	case errors.Is(err, service.ErrUnknownTenant):
		util.WebhookDeliveriesTotal.WithLabelValues("unknown_tenant").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown merchant"})
	default:
		util.WebhookDeliveriesTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
