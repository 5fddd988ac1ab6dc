package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geekdeals/internal/middleware"
	"geekdeals/internal/models"
)

// currentUser aborts with 401 when AuthMiddleware did not run or found nobody.
func currentUser(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: msgUnauthorized})
		return nil, false
	}
	return u, true
}
