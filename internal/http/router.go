package http

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router. allowedOrigins is a
// comma-separated origin list; empty allows all origins.
func SetupRouter(handler *Handler, allowedOrigins string) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/v1")
	models := v1.Group("/models")
	models.GET("", handler.ListModels)
	models.GET("/:name", handler.GetModel)
	models.GET("/:name/check", handler.CheckModel)
	models.GET("/:name/sample", handler.SampleModel)

	router.GET("/health", handler.HealthCheck)

	return router
}
