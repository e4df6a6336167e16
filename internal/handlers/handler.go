package handlers

import (
	"net/http"

	"audioscribe/internal/logger"
	"audioscribe/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Session state push over WebSocket — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.principalMiddleware)
	{
		h.registerSessionRoutes(api)
		h.registerLibraryRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	session := api.Group("/session")
	{
		session.GET("/state", h.getSessionState)
		session.POST("/upload", h.uploadAudio)
		session.POST("/transcribe", h.transcribeAudio)
		// Body example: {"sentences":3}
		session.POST("/summarize", h.summarizeTranscript)
		// Body example: {"title":"Standup notes","tags":"work,meeting"}
		session.POST("/save", h.saveSummary)
		session.POST("/back", h.backToMain)
		session.POST("/review", h.gotoReview)
		session.POST("/logout", h.logout)
	}
}

func (h *Handler) registerLibraryRoutes(api *gin.RouterGroup) {
	summaries := api.Group("/summaries")
	{
		summaries.GET("", h.listSummaries)
		summaries.DELETE("/:id", h.deleteSummary)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
