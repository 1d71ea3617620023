package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service":    "pagesort",
		"status":     "ok",
		"provider":   s.Sorter.Provider,
		"configured": s.Sorter.Configured(),
		"queued":     s.Queue.Len(),
		"jobs":       s.Jobs.Len(),
	})
}
