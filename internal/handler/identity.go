package handler

import (
	"backend/internal/service"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentIdentity resolves the acting account from the values the auth
// middleware stored on the context.
func currentIdentity(c *gin.Context) (service.Identity, error) {
	rawID, exists := c.Get("userID")
	if !exists {
		return service.Identity{}, errors.New("user ID not found in context")
	}
	idStr, ok := rawID.(string)
	if !ok {
		return service.Identity{}, errors.New("invalid user ID format")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return service.Identity{}, errors.New("invalid user ID format")
	}

	name := c.GetString("userName")
	if name == "" {
		name = "User"
	}
	return service.Identity{
		UserID: id,
		Name:   name,
		Role:   c.GetString("userRole"),
	}, nil
}
