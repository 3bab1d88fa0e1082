package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"potion_service/internal/auth"
	"potion_service/internal/service"
	"potion_service/internal/storage"

	"github.com/gin-gonic/gin"
)

const defaultProtectedPrefix = "/api"

type Handler struct {
	authService service.AuthService
	verifier    auth.Verifier
	store       storage.Storage
	metrics     *Metrics
	log         *slog.Logger

	protectedPrefix string
	allowedOrigins  []string
}

type Option func(*Handler)

// WithProtectedPrefix sets the path prefix guarded by AuthMiddleware.
func WithProtectedPrefix(prefix string) Option {
	return func(h *Handler) {
		if prefix != "" && prefix != "/" {
			h.protectedPrefix = prefix
		}
	}
}

func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) { h.allowedOrigins = origins }
}

func WithMetrics(m *Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

type errorResponse struct {
	Error string `json:"error"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func newErrorResponse(c *gin.Context, statusCode int, errMessage string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{Error: errMessage})
}

func NewHandler(srvc service.AuthService, verifier auth.Verifier, st storage.Storage, lgr *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		authService:     srvc,
		verifier:        verifier,
		store:           st,
		log:             lgr,
		protectedPrefix: defaultProtectedPrefix,
		allowedOrigins:  []string{"*"},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()

	router.Use(
		Recovery(h.log),
		RequestID(),
		RequestLogger(h.log),
		CORS(h.allowedOrigins),
	)

	if h.metrics != nil {
		router.Use(h.metrics.Middleware())
		router.GET("/metrics", h.metrics.Handler())
	}

	router.GET("/health", h.Health)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/signin", h.Signin)
	}

	h.registerResources(&router.RouterGroup)

	protected := router.Group(h.protectedPrefix)
	protected.Use(AuthMiddleware(h.verifier, h.log))
	{
		protected.GET("/test", h.ProtectedTest)
		protected.GET("/me", h.GetProfile)
		h.registerResources(protected)
	}

	return router
}

func (h *Handler) registerResources(g *gin.RouterGroup) {
	potions := g.Group("/potions")
	{
		potions.GET("", h.ListPotions)
		potions.GET("/:id", h.GetPotion)
		potions.POST("", h.CreatePotion)
		potions.PUT("/:id", h.UpdatePotion)
		potions.DELETE("/:id", h.DeletePotion)
	}

	brands := g.Group("/brands")
	{
		brands.GET("", h.ListBrands)
		brands.GET("/:id", h.GetBrand)
	}
}

// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "invalid id "+strconv.Quote(raw))
		return 0, false
	}

	return id, true
}
