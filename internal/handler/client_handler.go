package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"billforge/internal/service"
)

// ClientHandler handles client directory endpoints.
type ClientHandler struct {
	clientService service.ClientService
	logger        *zap.Logger
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientService, logger: logger}
}

// Create handles POST /api/v1/clients
// @Summary Create a client
// @Tags clients
// @Accept json
// @Produce json
// @Param request body service.CreateClientInput true "Client details"
// @Success 201 {object} Response{data=domain.Client} "Client created"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security UserIDAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	var input service.CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondCreated(c, client)
}

// GetByID handles GET /api/v1/clients/:id
// @Summary Get client by ID
// @Tags clients
// @Produce json
// @Param id path string true "Client ID (UUID)"
// @Success 200 {object} Response{data=domain.Client} "Client details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security UserIDAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid client ID")
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), userID, clientID)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, client)
}

// List handles GET /api/v1/clients
// @Summary List clients
// @Tags clients
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Client,meta=PagMeta} "List of clients"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security UserIDAuth
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	clients, total, err := h.clientService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondPaginated(c, clients, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Update handles PUT /api/v1/clients/:id
// @Summary Update a client
// @Description Merge the provided fields into the client; omitted fields keep their stored values
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID (UUID)"
// @Param request body service.UpdateClientInput true "Fields to change"
// @Success 200 {object} Response{data=domain.Client} "Updated client"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security UserIDAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid client ID")
		return
	}

	var input service.UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body is required")
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), userID, clientID, input)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, client)
}

// Delete handles DELETE /api/v1/clients/:id
// @Summary Delete a client
// @Description Remove a client; documents that reference it keep their snapshot fields
// @Tags clients
// @Produce json
// @Param id path string true "Client ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Client deleted"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security UserIDAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid client ID")
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), userID, clientID); err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, gin.H{"message": "client deleted"})
}

// Match handles POST /api/v1/clients/match
// @Summary Match a client mention
// @Description Score an extracted client mention against the user's stored clients and return up to three ranked candidates with a confidence level
// @Tags clients
// @Accept json
// @Produce json
// @Param request body service.MatchClientInput true "Extracted client fields"
// @Success 200 {object} Response{data=MatchResponse} "Ranked candidates"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security UserIDAuth
// @Router /clients/match [post]
func (h *ClientHandler) Match(c *gin.Context) {
	userID, ok := identityFromContext(c)
	if !ok {
		return
	}

	var input service.MatchClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body is required")
		return
	}

	result, err := h.clientService.Match(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, result)
}
