package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/boolsearch/models"
)

// Health returns a handler for GET /. It always answers 200.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "ok",
			Message: "Boolean Search API is running",
		})
	}
}
