package handler

import (
	"backend/internal/catalog"
	"backend/pkg/response"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CompanyHandler serves the static partner catalog. No auth required: the
// catalog is public marketing data.
type CompanyHandler struct{}

// NewCompanyHandler sets up the routing dependencies for catalog endpoints
func NewCompanyHandler() *CompanyHandler {
	return &CompanyHandler{}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/companies")
	{
		companies.GET("", h.ListCompanies)
		companies.GET("/:id", h.GetCompanyByID)
	}
}

// ListCompanies handles GET /companies with optional type/material filters
// @Summary      List partner companies
// @Description  Returns the partner catalog, optionally filtered by company type or accepted material
// @Tags         companies
// @Produce      json
// @Param        type      query     string  false  "Company type (recycling or incineration)"
// @Param        material  query     string  false  "Accepted material, substring match"
// @Success      200       {object}  response.Response{data=[]catalog.Company}
// @Router       /companies [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	companyType := c.Query("type")
	material := c.Query("material")

	if companyType == "" && material == "" {
		c.JSON(http.StatusOK, response.Success(http.StatusOK, catalog.All()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, catalog.Filter(companyType, material)))
}

// GetCompanyByID handles GET /companies/:id
// @Summary      Get company by ID
// @Description  Fetch a single partner company from the catalog
// @Tags         companies
// @Produce      json
// @Param        id   path      int  true  "Company ID"
// @Success      200  {object}  response.Response{data=catalog.Company}
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [get]
func (h *CompanyHandler) GetCompanyByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid company ID"))
		return
	}

	company, ok := catalog.ByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Company not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}
