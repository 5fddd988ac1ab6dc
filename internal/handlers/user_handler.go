package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geekdeals/internal/models"
	"geekdeals/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type registerResponse struct {
	models.UserSummary
	Message string `json:"message"`
}

// @Summary      Регистрация
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body      models.RegisterRequest  true  "Имя, CPF, email, пароль"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		CPF:      req.CPF,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		UserSummary: user.Summary(),
		Message:     "Conta criada com sucesso!",
	})
}
