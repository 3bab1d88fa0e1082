package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"potion_service/internal/auth"
	"potion_service/internal/service"
	"potion_service/internal/storage"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "UserID"

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthMiddleware rejects requests without a valid bearer token with the same
// 401 body whatever the reason, and stores the user id otherwise.
func AuthMiddleware(verifier auth.Verifier, lgr *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.Authenticate(verifier, c.GetHeader("Authorization"))
		if err != nil {
			lgr.Debug("request rejected",
				slog.String("op", "handler.AuthMiddleware"),
				slog.String("path", c.Request.URL.Path),
				slog.Bool("missing_token", errors.Is(err, auth.ErrMissingToken)),
			)

			newErrorResponse(c, http.StatusUnauthorized, "unauthorized")

			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(auth.ContextWithUserID(c.Request.Context(), userID))

		c.Next()
	}
}

func userIDFrom(c *gin.Context) (int64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// POST /auth/signup
func (h *Handler) Signup(c *gin.Context) {
	const op = "handler.Signup"

	log := h.log.With(slog.String("op", op))

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to read request body", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, "invalid request body")

		return
	}

	token, err := h.authService.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			log.Info("signup with taken email")

			newErrorResponse(c, http.StatusConflict, err.Error())

			return
		}

		log.Error("failed to sign up", slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, "failed to sign up")

		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// POST /auth/signin
func (h *Handler) Signin(c *gin.Context) {
	const op = "handler.Signin"

	log := h.log.With(slog.String("op", op))

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to read request body", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, "invalid request body")

		return
	}

	token, err := h.authService.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			newErrorResponse(c, http.StatusUnauthorized, err.Error())

			return
		}

		log.Error("failed to sign in", slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, "failed to sign in")

		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// GET /api/test
func (h *Handler) ProtectedTest(c *gin.Context) {
	userID, _ := userIDFrom(c)

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("in this protected route, we get the user's id like so: %d", userID),
	})
}

// GET /api/me
func (h *Handler) GetProfile(c *gin.Context) {
	const op = "handler.GetProfile"

	log := h.log.With(slog.String("op", op))

	userID, ok := userIDFrom(c)
	if !ok {
		log.Error("failed to get user id from context")

		newErrorResponse(c, http.StatusUnauthorized, "unauthorized")

		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.Status(http.StatusOK)
			return
		}

		log.Error("failed to get user by id", slog.Int64("user_id", userID), slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, err.Error())

		return
	}

	c.JSON(http.StatusOK, user)
}
