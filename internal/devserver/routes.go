package devserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// builds the dev server router with the full practice-session API surface
func NewRouter(store *Store) *gin.Engine {
	router := gin.Default()

	// local web clients connect from another origin during development
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// generous cap, just enough to notice a runaway client loop
	rateLimit := limiter.Rate{Period: time.Minute, Limit: 600}
	router.Use(mgin.NewMiddleware(limiter.New(memory.NewStore(), rateLimit)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1/practice")

	{
		v1.POST("/sessions", StartSessionHandler(store))
		v1.GET("/sessions", ListSessionsHandler(store))
		v1.GET("/sessions/:id", GetSessionHandler(store))
		v1.POST("/sessions/:id/pause", PauseSessionHandler(store))
		v1.POST("/sessions/:id/resume", ResumeSessionHandler(store))
		v1.POST("/sessions/:id/end", EndSessionHandler(store))
		v1.POST("/sessions/:id/events", AppendEventHandler(store))
		v1.PUT("/sessions/:id/code", PutCodeHandler(store))
		v1.GET("/sessions/:id/code", GetCodeHandler(store))
		v1.GET("/sessions/:id/recovery", RecoveryBundleHandler(store))
		v1.GET("/active-session", ActiveSessionHandler(store))
	}

	return router
}
