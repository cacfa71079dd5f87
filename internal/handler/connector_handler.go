package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/talent-eval-api/internal/dto"
	"github.com/noah-isme/talent-eval-api/internal/service"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
	"github.com/noah-isme/talent-eval-api/pkg/response"
)

// ConnectorHandler exposes connector management endpoints.
type ConnectorHandler struct {
	connectors *service.ConnectorService
}

// NewConnectorHandler constructs handler.
func NewConnectorHandler(connectors *service.ConnectorService) *ConnectorHandler {
	return &ConnectorHandler{connectors: connectors}
}

// List godoc
// @Summary List registered connectors
// @Tags Connectors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /connectors [get]
func (h *ConnectorHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.connectors.List(), nil)
}

// Get godoc
// @Summary Describe one connector
// @Tags Connectors
// @Produce json
// @Param name path string true "Connector name"
// @Success 200 {object} response.Envelope
// @Router /connectors/{name} [get]
func (h *ConnectorHandler) Get(c *gin.Context) {
	info, err := h.connectors.Get(c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// Test godoc
// @Summary Probe connectivity to the platform behind a connector
// @Tags Connectors
// @Produce json
// @Param name path string true "Connector name"
// @Success 200 {object} response.Envelope
// @Router /connectors/{name}/test [post]
func (h *ConnectorHandler) Test(c *gin.Context) {
	status, err := h.connectors.TestConnection(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// SendInvite godoc
// @Summary Send an assessment invitation through a connector
// @Tags Connectors
// @Accept json
// @Produce json
// @Param name path string true "Connector name"
// @Param payload body dto.SendInviteRequest true "Invite payload"
// @Success 201 {object} response.Envelope
// @Router /connectors/{name}/invites [post]
func (h *ConnectorHandler) SendInvite(c *gin.Context) {
	var req dto.SendInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	invite, err := h.connectors.SendInvite(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invite)
}

// PollResults godoc
// @Summary Pull current results for a tracked invitation
// @Tags Connectors
// @Produce json
// @Param name path string true "Connector name"
// @Param externalId path string true "Platform-assigned id"
// @Success 200 {object} response.Envelope
// @Router /connectors/{name}/results/{externalId} [get]
func (h *ConnectorHandler) PollResults(c *gin.Context) {
	result, err := h.connectors.PollResults(c.Request.Context(), c.Param("name"), c.Param("externalId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CancelInvite godoc
// @Summary Cancel a tracked invitation on platforms that support it
// @Tags Connectors
// @Produce json
// @Param name path string true "Connector name"
// @Param externalId path string true "Platform-assigned id"
// @Success 204
// @Router /connectors/{name}/invites/{externalId} [delete]
func (h *ConnectorHandler) CancelInvite(c *gin.Context) {
	if err := h.connectors.CancelInvite(c.Request.Context(), c.Param("name"), c.Param("externalId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
