package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/talent-eval-api/internal/service"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
	"github.com/noah-isme/talent-eval-api/pkg/response"
)

// WebhookHandler is the inbound endpoint external platforms deliver to.
// It reads the raw body exactly once so the signature is computed over
// the same bytes the connector parses.
type WebhookHandler struct {
	webhooks     *service.WebhookService
	maxBodyBytes int64
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(webhooks *service.WebhookService, maxBodyBytes int64) *WebhookHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &WebhookHandler{webhooks: webhooks, maxBodyBytes: maxBodyBytes}
}

// Receive godoc
// @Summary Receive a webhook delivery from an external assessment platform
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param connector path string true "Connector name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /webhooks/{connector} [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBodyBytes+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable payload"))
		return
	}
	if int64(len(body)) > h.maxBodyBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "payload too large"))
		return
	}

	outcome, err := h.webhooks.Process(c.Request.Context(), c.Param("connector"), body, c.Request.Header)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"outcome": string(outcome)}, nil)
}
