package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wafflemarket/pkg/logger"
	"wafflemarket/pkg/metrics"
)

func SetupRoutes(reviewHandler *ReviewHandler, profileHandler *ProfileHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("reputation-service"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "reputation-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.POST("/article/:article_id/seller", reviewHandler.CreateSellerReview)
		reviews.POST("/article/:article_id/buyer", reviewHandler.CreateBuyerReview)
		reviews.GET("/article/:article_id/sent", reviewHandler.GetSentReview)
		reviews.DELETE("/article/:article_id/sent", reviewHandler.DeleteSentReview)
		reviews.GET("/article/:article_id/received", reviewHandler.GetReceivedReview)

		reviews.POST("/user/:user_id/manner", reviewHandler.UpsertPeerReview)
	}

	users := router.Group("/users")
	users.Use(authMiddleware.Authenticate())
	{
		users.GET("/:user_id/temperature", profileHandler.GetTemperature)
		users.GET("/:user_id/manner", profileHandler.GetMannerTally)
	}

	return router
}
