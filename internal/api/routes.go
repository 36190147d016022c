package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/pokedex/backend/internal/api/handlers"
	"github.com/codyseavey/pokedex/backend/internal/metrics"
	"github.com/codyseavey/pokedex/backend/internal/services"
)

func SetupRouter(browser *services.Browser, details *services.DetailLoader, sessions *services.SessionStore, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), metrics.GinMiddleware())

	// CORS configuration - the browser shell is served from another origin
	config := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		config.AllowOrigins = allowedOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:4200", "http://localhost:5173"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(browser, details)
	sessionHandler := handlers.NewSessionHandler(sessions)

	api := router.Group("/api")
	{
		// Filter options
		api.GET("/types", catalogHandler.GetTypes)
		api.GET("/generations", catalogHandler.GetGenerations)
		api.GET("/rarities", catalogHandler.GetRarities)

		// Stateless catalog routes
		pokemon := api.Group("/pokemon")
		{
			pokemon.GET("", catalogHandler.ListPokemon)
			pokemon.GET("/:key", catalogHandler.GetPokemon)
			pokemon.GET("/:key/evolution", catalogHandler.GetEvolution)
			pokemon.GET("/:key/moves", catalogHandler.GetMoves)
		}

		// View session routes
		sess := api.Group("/sessions")
		{
			sess.POST("", sessionHandler.CreateSession)
			sess.GET("/:id", sessionHandler.GetSession)
			sess.DELETE("/:id", sessionHandler.DeleteSession)
			sess.PUT("/:id/search", sessionHandler.Search)
			sess.POST("/:id/type", sessionHandler.ToggleType)
			sess.POST("/:id/generation", sessionHandler.ToggleGeneration)
			sess.POST("/:id/rarity", sessionHandler.ToggleRarity)
			sess.DELETE("/:id/filters", sessionHandler.ClearFilters)
			sess.POST("/:id/page", sessionHandler.GoToPage)
			sess.POST("/:id/reload", sessionHandler.Reload)
			sess.POST("/:id/detail", sessionHandler.OpenDetail)
			sess.DELETE("/:id/detail", sessionHandler.CloseDetail)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
