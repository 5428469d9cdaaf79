package handler

import (
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler sets up the routing dependencies for pickup-thread endpoints
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	thread := router.Group("/pickup-requests/:id")
	thread.Use(middleware.RequireRole(model.RoleUser, model.RoleCompany, model.RoleAdmin))
	{
		thread.GET("/messages", h.ListMessages)
		thread.POST("/messages", h.SendMessage)
		thread.POST("/agreement", h.ShareAgreement)
		thread.POST("/sign", h.SignAgreement)
	}
}

// ListMessages handles GET /pickup-requests/:id/messages
// @Summary      List thread messages
// @Description  Returns every message in the pickup thread, oldest first
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Pickup Request ID"
// @Success      200  {object}  response.Response{data=[]model.ChatMessage}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /pickup-requests/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	identity, pickupID, ok := h.threadContext(c)
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(c.Request.Context(), identity.UserID.String(), identity.Role, pickupID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, messages))
}

// SendMessage handles POST /pickup-requests/:id/messages
// @Summary      Send thread message
// @Description  Posts a text message into the pickup thread and fans it out to websocket subscribers
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Pickup Request ID"
// @Param        payload  body      service.SendMessageRequest  true  "Message Payload"
// @Success      201      {object}  response.Response{data=model.ChatMessage}
// @Failure      400      {object}  response.Response
// @Router       /pickup-requests/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	identity, pickupID, ok := h.threadContext(c)
	if !ok {
		return
	}

	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), identity, pickupID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, msg))
}

// ShareAgreement handles POST /pickup-requests/:id/agreement
// @Summary      Generate agreement
// @Description  Renders the waste collection agreement PDF and shares it into the thread as a signable attachment
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Pickup Request ID"
// @Success      201  {object}  response.Response{data=model.ChatMessage}
// @Failure      404  {object}  response.Response
// @Router       /pickup-requests/{id}/agreement [post]
func (h *ChatHandler) ShareAgreement(c *gin.Context) {
	identity, pickupID, ok := h.threadContext(c)
	if !ok {
		return
	}

	msg, err := h.chatService.ShareAgreement(c.Request.Context(), identity, pickupID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, msg))
}

// SignAgreement handles POST /pickup-requests/:id/sign
// @Summary      Sign agreement
// @Description  Records the caller's digital signature for their party and posts a system notice
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Pickup Request ID"
// @Param        payload  body      service.SignAgreementRequest  true  "Signature Payload"
// @Success      200      {object}  response.Response{data=model.PickupRequest}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /pickup-requests/{id}/sign [post]
func (h *ChatHandler) SignAgreement(c *gin.Context) {
	identity, pickupID, ok := h.threadContext(c)
	if !ok {
		return
	}

	var req service.SignAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pickup, err := h.chatService.Sign(c.Request.Context(), identity, pickupID, req)
	if err != nil {
		status := http.StatusBadRequest
		if err.Error() == "agreement already signed for this party" {
			status = http.StatusConflict
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pickup))
}

// threadContext resolves the caller identity and the pickup ID from the
// request, writing the error response itself when either is invalid.
func (h *ChatHandler) threadContext(c *gin.Context) (service.Identity, uuid.UUID, bool) {
	identity, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return service.Identity{}, uuid.Nil, false
	}

	pickupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pickup request ID"))
		return service.Identity{}, uuid.Nil, false
	}
	return identity, pickupID, true
}
