package http_api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	v1 := s.router.Group("/api/v1")

	v1.POST("/purchase", s.purchase)
	v1.POST("/regions/update", s.updateRegion)
	v1.POST("/payments/verify", s.verifyPayment)
	v1.POST("/retract", s.retract)
	v1.POST("/profile", s.setProfile)
	v1.POST("/visitors", s.visitorPing)

	v1.GET("/regions", s.listRegions)
	v1.GET("/regions/owned", s.listOwnedRegions)
	v1.GET("/balance", s.getBalance)
	v1.GET("/activity", s.recentActivity)
	v1.GET("/stats", s.stats)

	s.router.GET("/healthz", s.healthz)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
