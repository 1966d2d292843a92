package router

import (
	"todoboard/internal/app/board"
	"todoboard/internal/app/health"
	"todoboard/internal/app/menu"
	"todoboard/internal/app/profile"
	"todoboard/internal/gateways/websocket"
	"todoboard/internal/middleware"

	_ "todoboard/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Router struct {
	Engine    *gin.Engine
	api       *gin.RouterGroup
	protected *gin.RouterGroup
}

func NewRouter(logger *zap.Logger, allowedOrigins []string, verifier middleware.TokenVerifier) *Router {
	engine := gin.New()
	engine.Use(middleware.CORSMiddleware(allowedOrigins))
	engine.Use(middleware.LoggerMiddleware(logger))
	engine.Use(gin.Recovery())

	api := engine.Group("/api")
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(verifier, logger))

	return &Router{Engine: engine, api: api, protected: protected}
}

func (r *Router) RegisterHealthRoutes(handler health.Handler) {
	health.RegisterRoutes(r.api, handler)
}

// The websocket authenticates through its token query parameter, since
// browsers cannot set headers on the upgrade request.
func (r *Router) RegisterWebSocketRoutes(hub *websocket.Hub) {
	websocket.RegisterRoutes(r.api, hub)
}

func (r *Router) RegisterMenuRoutes(handler menu.Handler) {
	menu.RegisterRoutes(r.protected, handler)
}

func (r *Router) RegisterBoardRoutes(handler board.Handler) {
	board.RegisterRoutes(r.protected, handler)
}

func (r *Router) RegisterProfileRoutes(handler profile.Handler) {
	profile.RegisterRoutes(r.protected, handler)
}

func (r *Router) RegisterSwaggerRoutes() {
	r.Engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (r *Router) Serve(addr string) error {
	return r.Engine.Run(addr)
}
