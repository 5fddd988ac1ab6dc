package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"geekdeals/internal/models"
	"geekdeals/internal/services"
)

type AuthHandler struct {
	login *services.LoginService
}

func NewAuthHandler(login *services.LoginService) *AuthHandler {
	return &AuthHandler{login: login}
}

// @Summary      Вход: шаг 1
// @Description  Проверяет email/пароль и отправляет 6-значный код на почту
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Email и пароль"
// @Success      200    {object}  models.LoginResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      429    {object}  errorResponse
// @Failure      500    {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ch, err := h.login.Start(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[auth][login] challenge issued took=%s", time.Since(start).Truncate(time.Millisecond))

	c.JSON(http.StatusOK, models.LoginResponse{
		SessionToken: ch.SessionToken,
		TempToken:    ch.SessionToken,
		ExpiresIn:    ch.ExpiresIn,
		Message:      "Código enviado para seu email.",
	})
}

// @Summary      Вход: шаг 2
// @Description  Проверяет код и выдаёт access token. Поле token принимается как устаревший синоним sessionToken
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.VerifyCodeRequest  true  "Сессия и код"
// @Success      200   {object}  models.VerifyResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/auth/2fa/verify [post]
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req models.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	grant, err := h.login.Verify(c.Request.Context(), req.Session(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.VerifyResponse{
		AccessToken: grant.AccessToken,
		Token:       grant.AccessToken,
		ExpiresAt:   grant.ExpiresAt.Unix(),
		Message:     "Login realizado com sucesso!",
	})
}

// @Summary      Повторная отправка кода
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.ResendCodeRequest  true  "Сессия"
// @Success      200   {object}  models.ResendResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/2fa/resend [post]
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req models.ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	res, err := h.login.Resend(c.Request.Context(), req.Session())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ResendResponse{
		ExpiresIn: res.ExpiresIn,
		Message:   "Novo código enviado.",
	})
}

// @Summary      Текущий пользователь
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.UserSummary
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, u.Summary())
}
