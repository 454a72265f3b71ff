package server

import (
	"github.com/labstack/echo/v4"
)

// Trigger handlers run the pipeline synchronously and always answer 200 with
// the run summary, even when every candidate failed. A cron caller can do
// nothing useful with a 5xx; failures surface in logs and metrics instead.

func (s *Server) handleTimeline(c echo.Context) error {
	summary := s.app.AmplifyTimeline(c.Request().Context())
	return c.JSON(200, summary)
}

func (s *Server) handleSearch(c echo.Context) error {
	summary := s.app.AmplifySearch(c.Request().Context())
	return c.JSON(200, summary)
}

func (s *Server) handleTrend(c echo.Context) error {
	summary := s.app.AmplifyTrends(c.Request().Context())
	return c.JSON(200, summary)
}
