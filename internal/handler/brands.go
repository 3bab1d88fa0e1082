package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /brands
func (h *Handler) ListBrands(c *gin.Context) {
	const op = "handler.ListBrands"

	brands, err := h.store.ListBrands(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list brands", slog.String("op", op), slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, err.Error())

		return
	}

	c.JSON(http.StatusOK, brands)
}

// GET /brands/:id
func (h *Handler) GetBrand(c *gin.Context) {
	const op = "handler.GetBrand"

	id, ok := parseID(c)
	if !ok {
		return
	}

	brand, err := h.store.GetBrand(c.Request.Context(), id)
	h.respondRow(c, op, brand, err)
}
