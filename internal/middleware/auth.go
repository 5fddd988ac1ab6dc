package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"geekdeals/internal/models"
	"geekdeals/internal/services"
)

// ContextUserKey holds the authenticated *models.User in the gin context.
const ContextUserKey = "user"

func AuthMiddleware(tokens *services.TokenIssuer, users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// пропускаем preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token não fornecido."})
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token inválido."})
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Não autorizado."})
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID())
		if errors.Is(err, services.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Usuário não encontrado."})
			return
		}
		if err != nil {
			log.Printf("[auth][mw] user lookup failed userID=%s: %v", claims.UserID(), err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Erro interno no servidor."})
			return
		}

		user.PasswordHash = ""
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}
