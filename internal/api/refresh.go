package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"askseba/backend/internal/matching"
	"askseba/backend/internal/store"
)

const refreshProgressEvery = 25

// refreshJob tracks the state of a running catalog refresh.
type refreshJob struct {
	id        string
	query     string
	cancel    context.CancelFunc
	startedAt time.Time
}

// RefreshRequest optionally narrows the refresh to one search term.
type RefreshRequest struct {
	Query string `json:"query"`
}

// handleRefresh kicks off an asynchronous cache rebuild: purge the poisoned
// search cache, re-query the remote catalog, persist the pool locally.
func (s *Server) handleRefresh(c *gin.Context) {
	var req RefreshRequest
	if c.Request.Body != nil {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			s.renderError(c, http.StatusBadRequest, err)
			return
		}
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.activeJob != nil {
		s.renderError(c, http.StatusConflict, errors.New("refresh already running"))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &refreshJob{
		id:        uuid.NewString(),
		query:     strings.TrimSpace(req.Query),
		cancel:    cancel,
		startedAt: time.Now().UTC(),
	}
	s.activeJob = job
	go s.runRefresh(ctx, job)

	c.JSON(http.StatusAccepted, StartRefreshResponse{
		JobID:     job.id,
		Query:     job.query,
		StartedAt: job.startedAt,
	})
}

func (s *Server) handleCancelRefresh(c *gin.Context) {
	jobID := strings.TrimSpace(c.Param("jobID"))
	if jobID == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("job id required"))
		return
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.activeJob == nil {
		s.renderError(c, http.StatusNotFound, errors.New("no refresh running"))
		return
	}
	if s.activeJob.id != jobID {
		s.renderError(c, http.StatusNotFound, errors.New("job not found"))
		return
	}

	s.activeJob.cancel()
	logrus.WithField("job", jobID).Info("refresh cancellation requested")
	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}

func (s *Server) handleRefreshStatus(c *gin.Context) {
	s.jobMu.Lock()
	job := s.activeJob
	s.jobMu.Unlock()

	status := s.refreshNotifier.LastStatus()

	resp := RefreshStatusResponse{Running: job != nil}
	if job != nil {
		resp.JobID = job.id
		resp.Query = job.query
	}
	if status != nil {
		resp.State = status.Type
		resp.Message = status.Message
		resp.Persisted = status.Persisted
		resp.Total = status.Total
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) runRefresh(ctx context.Context, job *refreshJob) {
	defer func() {
		s.jobMu.Lock()
		s.activeJob = nil
		s.jobMu.Unlock()
	}()

	logrus.WithFields(logrus.Fields{
		"job":   job.id,
		"query": job.query,
	}).Info("catalog refresh started")
	s.refreshNotifier.Broadcast(RefreshEvent{
		Type:    "started",
		JobID:   job.id,
		Query:   job.query,
		Message: "refresh started",
	})

	removed, err := s.catalog.ClearCache()
	if err != nil {
		s.failRefresh(job, fmt.Errorf("clear cache: %w", err))
		return
	}

	pool, err := s.catalog.Search(ctx, job.query)
	if err != nil {
		s.failRefresh(job, fmt.Errorf("rebuild pool: %w", err))
		return
	}

	persisted := 0
	for _, p := range pool {
		select {
		case <-ctx.Done():
			s.refreshNotifier.Broadcast(RefreshEvent{
				Type:      "cancelled",
				JobID:     job.id,
				Total:     len(pool),
				Persisted: persisted,
				Message:   "refresh cancelled",
			})
			logrus.WithField("job", job.id).Warn("catalog refresh cancelled")
			return
		default:
		}

		row := storeModelFromPerfume(p)
		if err := s.db.UpsertPerfume(row); err != nil {
			s.failRefresh(job, fmt.Errorf("persist %s: %w", p.ID, err))
			return
		}
		persisted++

		if persisted%refreshProgressEvery == 0 {
			s.refreshNotifier.Broadcast(RefreshEvent{
				Type:      "progress",
				JobID:     job.id,
				Total:     len(pool),
				Persisted: persisted,
			})
		}
	}

	duration := time.Since(job.startedAt).Round(time.Millisecond)
	s.refreshNotifier.Broadcast(RefreshEvent{
		Type:      "complete",
		JobID:     job.id,
		Total:     len(pool),
		Persisted: persisted,
		Message:   fmt.Sprintf("refresh finished in %s", duration),
	})
	logrus.WithFields(logrus.Fields{
		"job":           job.id,
		"cache_removed": removed,
		"persisted":     persisted,
		"duration":      duration,
	}).Info("catalog refresh completed")
}

func (s *Server) failRefresh(job *refreshJob, err error) {
	s.refreshNotifier.Broadcast(RefreshEvent{
		Type:    "error",
		JobID:   job.id,
		Message: err.Error(),
	})
	logrus.WithError(err).WithField("job", job.id).Error("catalog refresh failed")
}

func storeModelFromPerfume(p matching.Perfume) *store.Perfume {
	row := &store.Perfume{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Image:       p.Image,
		Description: p.Description,
		Price:       p.Price,
		Status:      p.Status,
		Variant:     p.Variant,
		Source:      p.Source,
		FragellaID:  p.FragellaID,
	}
	row.SetFamilies(p.Families)
	row.SetIngredients(p.Ingredients)
	row.SetTriggers(p.SymptomTriggers)
	if p.Pyramid != nil {
		row.SetPyramid(&store.Pyramid{
			Top:   p.Pyramid.Top,
			Heart: p.Pyramid.Heart,
			Base:  p.Pyramid.Base,
		})
	}
	return row
}
