package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"potion_service/internal/models"
	"potion_service/internal/storage"

	"github.com/gin-gonic/gin"
)

// A missing row is answered with 200 and no body, as is any lookup by id.

// GET /potions
func (h *Handler) ListPotions(c *gin.Context) {
	const op = "handler.ListPotions"

	potions, err := h.store.ListPotions(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list potions", slog.String("op", op), slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, err.Error())

		return
	}

	c.JSON(http.StatusOK, potions)
}

// GET /potions/:id
func (h *Handler) GetPotion(c *gin.Context) {
	const op = "handler.GetPotion"

	id, ok := parseID(c)
	if !ok {
		return
	}

	potion, err := h.store.GetPotion(c.Request.Context(), id)
	h.respondRow(c, op, potion, err)
}

// POST /potions
func (h *Handler) CreatePotion(c *gin.Context) {
	const op = "handler.CreatePotion"

	in, ok := h.bindPotion(c, op)
	if !ok {
		return
	}

	potion, err := h.store.CreatePotion(c.Request.Context(), in)
	h.respondRow(c, op, potion, err)
}

// PUT /potions/:id
func (h *Handler) UpdatePotion(c *gin.Context) {
	const op = "handler.UpdatePotion"

	id, ok := parseID(c)
	if !ok {
		return
	}

	in, ok := h.bindPotion(c, op)
	if !ok {
		return
	}

	potion, err := h.store.UpdatePotion(c.Request.Context(), id, in)
	h.respondRow(c, op, potion, err)
}

// DELETE /potions/:id
func (h *Handler) DeletePotion(c *gin.Context) {
	const op = "handler.DeletePotion"

	id, ok := parseID(c)
	if !ok {
		return
	}

	potion, err := h.store.DeletePotion(c.Request.Context(), id)
	h.respondRow(c, op, potion, err)
}

// bindPotion reads the request body. On protected routes an absent owner_id
// defaults to the caller.
func (h *Handler) bindPotion(c *gin.Context, op string) (models.PotionInput, bool) {
	var in models.PotionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.log.Error("failed to read request body", slog.String("op", op), slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, err.Error())

		return in, false
	}

	if in.OwnerID == 0 {
		if userID, ok := userIDFrom(c); ok {
			in.OwnerID = userID
		}
	}

	return in, true
}

func (h *Handler) respondRow(c *gin.Context, op string, row any, err error) {
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.Status(http.StatusOK)
			return
		}

		h.log.Error("storage request failed", slog.String("op", op), slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, err.Error())

		return
	}

	c.JSON(http.StatusOK, row)
}
