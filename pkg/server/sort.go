package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"pagesort/pkg/schema"
	"pagesort/pkg/sorter"
	"pagesort/pkg/utils"
)

// POST /api/chapters/sort
func (s *Server) handlePostSort(c echo.Context) error {
	req, err := bindSortRequest(c)
	if err != nil {
		log.Warn("rejected sort request", "error", err)
		return respondError(c, err)
	}

	result, err := s.Sorter.Sort(c.Request().Context(), req, nil)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// POST /api/chapters/sort/stream
func (s *Server) handleStreamSort(c echo.Context) error {
	req, err := bindSortRequest(c)
	if err != nil {
		log.Warn("rejected sort request", "error", err)
		return respondError(c, err)
	}
	if err := s.Sorter.Ready(); err != nil {
		return respondError(c, err)
	}

	w, err := utils.NewSSEWriter(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer w.Close()

	result, err := s.Sorter.Sort(c.Request().Context(), req, func(analyses []schema.PageAnalysis) {
		if err := w.Event("analysis", schema.Analysis{Analyses: analyses}); err != nil {
			log.Warn("failed streaming analysis", "error", err)
		}
	})
	if err != nil {
		if cancelled(c) {
			log.Warn("sort cancelled by client")
			return nil
		}
		return w.Event("error", sorter.PayloadOf(err))
	}
	return w.Event("done", result)
}

func cancelled(c echo.Context) bool {
	select {
	case <-c.Request().Context().Done():
		return true
	default:
		return false
	}
}
