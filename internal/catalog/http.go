package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/forms", h.ListForms)
}

func (h *Handler) ListForms(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Forms())
}
