package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"geekdeals/internal/services"
)

const (
	msgBadRequest         = "Requisição inválida."
	msgInvalidCredentials = "Credenciais inválidas."
	msgSessionExpired     = "Sessão expirada. Faça login novamente."
	msgCodeExpired        = "Código expirado. Faça login novamente."
	msgTooManyAttempts    = "Muitas tentativas. Faça login novamente."
	msgLoginThrottled     = "Muitas tentativas de login. Tente novamente mais tarde."
	msgConflict           = "Email ou CPF já registrados."
	msgUnauthorized       = "Não autorizado."
	msgProductNotFound    = "Produto não encontrado."
	msgInternal           = "Erro interno no servidor."
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Message string `json:"message"`
}

func statusFor(err error) (int, string) {
	var ve *services.ValidationError
	var ice *services.InvalidCodeError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.As(err, &ice):
		return http.StatusUnauthorized, fmt.Sprintf("Código inválido. %d tentativa(s) restante(s).", ice.Remaining)
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, services.ErrSessionExpired):
		return http.StatusUnauthorized, msgSessionExpired
	case errors.Is(err, services.ErrCodeExpired):
		return http.StatusUnauthorized, msgCodeExpired
	case errors.Is(err, services.ErrTooManyAttempts):
		return http.StatusTooManyRequests, msgTooManyAttempts
	case errors.Is(err, services.ErrLoginThrottled):
		return http.StatusTooManyRequests, msgLoginThrottled
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, msgConflict
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, msgProductNotFound
	}
	return http.StatusInternalServerError, msgInternal
}

// respondError writes the fixed status/message pair for err. Internals are only logged.
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[http] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, errorResponse{Message: msg})
}

func respondBadRequest(c *gin.Context, err error) {
	log.Printf("[http] %s %s bad request: bind json failed: err=%v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusBadRequest, errorResponse{Message: msgBadRequest})
}
