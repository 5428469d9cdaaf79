package handler

import (
	"backend/internal/analyze"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AnalyzeHandler proxies waste photos to the AI classification gateway.
// Unlike the rest of the API it speaks the gateway's flat JSON shapes so
// clients built against the hosted function keep working unchanged.
type AnalyzeHandler struct {
	client *analyze.Client
}

// NewAnalyzeHandler sets up the routing dependencies for the AI proxy
func NewAnalyzeHandler(client *analyze.Client) *AnalyzeHandler {
	return &AnalyzeHandler{client: client}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AnalyzeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/analyze-waste", h.AnalyzeWaste)
}

type analyzeRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// AnalyzeWaste handles POST /analyze-waste
// @Summary      Analyze waste photo
// @Description  Classifies the waste items in a base64-encoded photo via the AI gateway
// @Tags         analyze
// @Accept       json
// @Produce      json
// @Param        payload  body      analyzeRequest  true  "Image Payload"
// @Success      200      {object}  analyze.Result
// @Failure      400      {object}  map[string]string
// @Failure      402      {object}  map[string]string
// @Failure      429      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /analyze-waste [post]
func (h *AnalyzeHandler) AnalyzeWaste(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ImageBase64 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}

	result, err := h.client.Analyze(c.Request.Context(), req.ImageBase64)
	if err != nil {
		if gwErr, ok := err.(*analyze.GatewayError); ok {
			c.JSON(gwErr.Status, gin.H{"error": gwErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI analysis failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
