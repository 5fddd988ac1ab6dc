package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geekdeals/internal/models"
	"geekdeals/internal/services"
)

type ProductHandler struct {
	Service *services.ProductService
}

func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{Service: service}
}

// @Summary      Создать товар
// @Tags         Products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product  body      models.ProductInput  true  "Товар"
// @Success      201      {object}  models.Product
// @Failure      400      {object}  errorResponse
// @Failure      401      {object}  errorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}
	p, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary      Список товаров (новые первыми)
// @Tags         Products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Product
// @Failure      401  {object}  errorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	items, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary      Товар по id
// @Tags         Products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID товара"
// @Success      200  {object}  models.Product
// @Failure      404  {object}  errorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	p, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Обновить товар
// @Description  Полная замена полей товара
// @Tags         Products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "ID товара"
// @Param        product  body      models.ProductInput  true  "Товар"
// @Success      200      {object}  models.Product
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}
	p, err := h.Service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Удалить товар
// @Tags         Products
// @Security     BearerAuth
// @Param        id   path  string  true  "ID товара"
// @Success      204
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
