package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// NewRouter wires the routes. metrics may be nil.
func NewRouter(ops Operations, metrics http.Handler, health HealthCheck) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	h := NewHandler(ops)

	// Public routes
	router.POST("/users", h.CreateUser)
	router.POST("/login", h.Login)
	router.GET("/bets", h.ListBets)
	router.GET("/bets/:id", h.GetBet)

	// Authenticated routes
	protected := router.Group("/")
	protected.Use(RequireAuth(ops))
	{
		protected.DELETE("/users/:phone", h.SoftDeleteUser)
		protected.GET("/wallets/me", h.GetWallet)

		protected.POST("/bets", h.CreateBet)
		protected.PATCH("/bets/:id", h.UpdateBet)
		protected.DELETE("/bets/:id", h.DeleteBet)
		protected.POST("/bets/:id/join", h.JoinBet)
		protected.POST("/bets/:id/resolve", h.ResolveBet)
	}

	return router
}
