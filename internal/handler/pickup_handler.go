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

type PickupHandler struct {
	pickupService service.PickupService
}

// NewPickupHandler sets up the routing dependencies for pickup endpoints
func NewPickupHandler(pickupService service.PickupService) *PickupHandler {
	return &PickupHandler{pickupService: pickupService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *PickupHandler) RegisterRoutes(router *gin.RouterGroup) {
	pickups := router.Group("/pickup-requests")
	pickups.Use(middleware.RequireRole(model.RoleUser, model.RoleCompany, model.RoleAdmin))
	{
		pickups.POST("", h.CreatePickup)
		pickups.GET("", h.ListPickups)
	}

	// Only the servicing company or an admin may move a pickup forward
	router.PATCH("/pickup-requests/:id/status",
		middleware.RequireRole(model.RoleCompany, model.RoleAdmin), h.UpdateStatus)
}

// CreatePickup handles POST /pickup-requests
// @Summary      Create pickup request
// @Description  Schedules a waste pickup with a partner company
// @Tags         pickups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePickupRequest  true  "Pickup Payload"
// @Success      201      {object}  response.Response{data=model.PickupRequest}
// @Failure      400      {object}  response.Response
// @Router       /pickup-requests [post]
func (h *PickupHandler) CreatePickup(c *gin.Context) {
	identity, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	var req service.CreatePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pickup, err := h.pickupService.Create(c.Request.Context(), identity.UserID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, pickup))
}

// ListPickups handles GET /pickup-requests
// @Summary      List pickup requests
// @Description  Users see their own pickups; companies and admins see all, newest first
// @Tags         pickups
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.PickupRequest}
// @Failure      401  {object}  response.Response
// @Router       /pickup-requests [get]
func (h *PickupHandler) ListPickups(c *gin.Context) {
	identity, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	pickups, err := h.pickupService.List(c.Request.Context(), identity.UserID, identity.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to list pickup requests"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pickups))
}

// UpdateStatus handles PATCH /pickup-requests/:id/status
// @Summary      Update pickup status
// @Description  Moves a pickup through its lifecycle; completing one awards loyalty points
// @Tags         pickups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                             true  "Pickup Request ID"
// @Param        payload  body      service.UpdatePickupStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=model.PickupRequest}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /pickup-requests/{id}/status [patch]
func (h *PickupHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pickup request ID"))
		return
	}

	var req service.UpdatePickupStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pickup, err := h.pickupService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		status := http.StatusBadRequest
		if err.Error() == "pickup request not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pickup))
}
