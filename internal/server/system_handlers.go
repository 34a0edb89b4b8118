package server

import (
	"net/http"

	"github.com/soyaya/boardling/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// CallbackAuthMiddleware guards the observer/executor callback routes with a
// shared token. An empty configured token disables the routes entirely
// rather than leaving them open.
func CallbackAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "callbacks are not configured"})
			c.Abort()
			return
		}
		if c.GetHeader("X-Callback-Token") != token {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid callback token"})
			c.Abort()
			return
		}
		c.Next()
	}
}
