package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pagesort/pkg/queue"
	"pagesort/pkg/sorter"
	"pagesort/pkg/utils"
)

type Server struct {
	Echo   *echo.Echo
	Sorter *sorter.Sorter
	Queue  *queue.SortQueue
	Jobs   *utils.SyncMap[map[string]Job, string, Job]
	Ctx    context.Context

	jobTTL time.Duration
}

type Config struct {
	Workers   int
	QueueSize int
	MaxBody   string
	JobTTL    time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 32
	}
	if c.MaxBody == "" {
		c.MaxBody = "64M"
	}
	if c.JobTTL <= 0 {
		c.JobTTL = time.Hour
	}
	return c
}

func NewServer(ctx context.Context, srt *sorter.Sorter, cfg Config) *Server {
	cfg = cfg.withDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(cfg.MaxBody))

	s := &Server{
		Echo:   e,
		Sorter: srt,
		Queue:  queue.New(srt, cfg.Workers, cfg.QueueSize),
		Jobs:   utils.NewSyncMap[map[string]Job](),
		Ctx:    ctx,
		jobTTL: cfg.JobTTL,
	}
	s.Queue.Start()
	go s.pruneLoop()

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api/chapters")
	api.POST("/sort", s.handlePostSort)          // synchronous sort -> OrderingResult
	api.POST("/sort/stream", s.handleStreamSort) // SSE: analysis, done | error
	api.POST("/sort/jobs", s.handlePostJob)      // enqueue -> Job (202)
	api.GET("/sort/jobs/:id", s.handleGetJob)
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr, "provider", s.Sorter.Provider)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	err := s.Echo.Shutdown(ctx)
	s.Queue.Stop()
	return err
}
