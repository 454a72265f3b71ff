package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Amplification triggers, GET so an external cron can hit them directly
	s.echo.GET("/timeline", s.handleTimeline)
	s.echo.GET("/search", s.handleSearch)
	s.echo.GET("/trend", s.handleTrend)
}
