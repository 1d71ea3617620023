package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"

	"pagesort/pkg/queue"
	"pagesort/pkg/schema"
	"pagesort/pkg/sorter"
)

type JobState string

const (
	JobPending JobState = "pending"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// Job is the public view of an asynchronous sort.
type Job struct {
	ID         string                 `json:"id"`
	State      JobState               `json:"state"`
	Result     *schema.OrderingResult `json:"result,omitempty"`
	Error      *sorter.ErrorPayload   `json:"error,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
	FinishedAt time.Time              `json:"finishedAt,omitzero"`
}

func (j Job) finished() bool {
	return j.State == JobDone || j.State == JobFailed
}

// POST /api/chapters/sort/jobs
func (s *Server) handlePostJob(c echo.Context) error {
	req, err := bindSortRequest(c)
	if err != nil {
		log.Warn("rejected sort job", "error", err)
		return respondError(c, err)
	}
	if err := s.Sorter.Ready(); err != nil {
		return respondError(c, err)
	}

	id := ksuid.New().String()
	item, err := s.Queue.Add(id, req)
	if err != nil {
		log.Warn("sort job not queued", "error", err)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrStopped) {
			return c.JSON(http.StatusServiceUnavailable, sorter.ErrorPayload{Error: err.Error()})
		}
		return respondError(c, err)
	}

	job := Job{ID: id, State: JobPending, CreatedAt: time.Now()}
	s.Jobs.Store(id, job)
	go s.track(item)

	c.Response().Header().Set(echo.HeaderLocation, c.Path()+"/"+id)
	return c.JSON(http.StatusAccepted, job)
}

// GET /api/chapters/sort/jobs/:id
func (s *Server) handleGetJob(c echo.Context) error {
	job, ok := s.Jobs.Load(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, sorter.ErrorPayload{Error: "job not found"})
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) track(item *queue.Item) {
	<-item.Started
	s.Jobs.Update(item.ID, func(job Job, _ bool) Job {
		if !job.finished() {
			job.State = JobRunning
		}
		return job
	})

	result, err := item.Wait(context.Background())
	s.Jobs.Update(item.ID, func(job Job, _ bool) Job {
		job.FinishedAt = time.Now()
		if err != nil {
			payload := sorter.PayloadOf(err)
			job.State, job.Error = JobFailed, &payload
			return job
		}
		job.State, job.Result = JobDone, &result
		return job
	})
	log.Debug("sort job finished", "job", item.ID, "error", err)
}

func (s *Server) pruneLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.Ctx.Done():
			return
		case now := <-ticker.C:
			s.pruneJobs(now)
		}
	}
}

// pruneJobs drops finished jobs older than the job TTL.
func (s *Server) pruneJobs(now time.Time) int {
	n := s.Jobs.DeleteFunc(func(_ string, job Job) bool {
		return job.finished() && now.Sub(job.FinishedAt) > s.jobTTL
	})
	if n > 0 {
		log.Debug("pruned sort jobs", "count", n)
	}
	return n
}
