package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"mvp-foundry/internal/bootstrap"
	"mvp-foundry/internal/transport/http/handler"
	"mvp-foundry/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	blueprintHandler := handler.NewBlueprintHandler(app.Blueprints)
	formatHandler := handler.NewFormatHandler(app.Blueprints)
	authHandler := handler.NewAuthHandler(app.Auth)

	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")
	v1.POST("/tokens", authHandler.IssueToken)
	v1.POST("/format", formatHandler.Format)

	blueprints := v1.Group("/blueprints")
	blueprints.GET("", blueprintHandler.List)
	blueprints.GET("/:id", blueprintHandler.Get)
	blueprints.GET("/:id/view", blueprintHandler.View)
	blueprints.GET("/:id/archive", blueprintHandler.Archive)
	blueprints.POST("", middleware.AuthJWT(app.Auth.Secret()), blueprintHandler.Create)

	return router
}

// NewHandler wraps the router with CORS so preflight requests are answered
// before routing and auth.
func NewHandler(app *bootstrap.App) http.Handler {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: app.Config.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	})
	return corsHandler.Handler(NewRouter(app))
}
