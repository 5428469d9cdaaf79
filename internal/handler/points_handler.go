package handler

import (
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PointsHandler struct {
	pointsService service.PointsService
}

// NewPointsHandler sets up the routing dependencies for loyalty endpoints
func NewPointsHandler(pointsService service.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: pointsService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *PointsHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(model.RoleUser, model.RoleCompany, model.RoleAdmin)

	points := router.Group("/points", auth)
	{
		points.GET("/balance", h.GetBalance)
		points.GET("/transactions", h.ListTransactions)
	}

	redemptions := router.Group("/redemptions", auth)
	{
		redemptions.GET("", h.ListRedemptions)
		redemptions.POST("", h.Redeem)
		redemptions.GET("/options", h.ListOptions)
		redemptions.GET("/:id/qr", h.GetRedemptionQR)
	}
}

// GetBalance handles GET /points/balance
// @Summary      Get points balance
// @Description  Returns the caller's loyalty balance computed from the stored ledger
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=int}
// @Router       /points/balance [get]
func (h *PointsHandler) GetBalance(c *gin.Context) {
	identity, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	balance, err := h.pointsService.Balance(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch balance"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"balance": balance}))
}

// ListTransactions handles GET /points/transactions
// @Summary      List points transactions
// @Description  Returns the caller's loyalty ledger entries, newest first, paginated
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]model.PointsTransaction}
// @Router       /points/transactions [get]
func (h *PointsHandler) ListTransactions(c *gin.Context) {
	identity, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	params := pagination.Parse(c)
	txns, err := h.pointsService.Transactions(c.Request.Context(), identity.UserID, params.Offset, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch transactions"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, txns))
}

// ListRedemptions handles GET /redemptions
// @Summary      List redemptions
// @Description  Returns the caller's most recent redemption vouchers
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Redemption}
// @Router       /redemptions [get]
func (h *PointsHandler) ListRedemptions(c *gin.Context) {
	identity, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	// redemption history shows the 10 most recent vouchers unless asked otherwise
	limit := 10
	if c.Query("limit") != "" {
		limit = pagination.Parse(c).Limit
	}
	redemptions, err := h.pointsService.Redemptions(c.Request.Context(), identity.UserID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch redemptions"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, redemptions))
}

// ListOptions handles GET /redemptions/options
// @Summary      List redemption options
// @Description  Returns the fixed menu of redemption channels with their minimums
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RedemptionOption}
// @Router       /redemptions/options [get]
func (h *PointsHandler) ListOptions(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, service.Options()))
}

// Redeem handles POST /redemptions
// @Summary      Redeem points
// @Description  Debits points and issues a redemption voucher with an embedded QR payload
// @Tags         points
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RedeemRequest  true  "Redemption Payload"
// @Success      201      {object}  response.Response{data=model.Redemption}
// @Failure      400      {object}  response.Response
// @Router       /redemptions [post]
func (h *PointsHandler) Redeem(c *gin.Context) {
	identity, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	var req service.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	redemption, err := h.pointsService.Redeem(c.Request.Context(), identity.UserID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, redemption))
}

// GetRedemptionQR handles GET /redemptions/:id/qr
// @Summary      Get redemption QR
// @Description  Renders the voucher's QR payload as a PNG for partner outlets to scan
// @Tags         points
// @Produce      png
// @Security     BearerAuth
// @Param        id   path      string  true  "Redemption ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /redemptions/{id}/qr [get]
func (h *PointsHandler) GetRedemptionQR(c *gin.Context) {
	identity, err := currentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	redemptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid redemption ID"))
		return
	}

	png, err := h.pointsService.RedemptionQR(c.Request.Context(), identity.UserID, redemptionID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
