package api

import (
	"errors"
	"io"
	"net/http"
	"runtime"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"askseba/backend/internal/matching"
	"askseba/backend/internal/util"
)

// tierGate holds the result budget for a subscription tier. The tier itself
// arrives resolved on the request; a zero limit means unlimited.
type tierGate struct {
	Limit   int
	Blurred int
}

var tierGates = map[string]tierGate{
	"GUEST":   {Limit: 3, Blurred: 3},
	"FREE":    {Limit: 10, Blurred: 5},
	"PREMIUM": {Limit: 0, Blurred: 0},
}

func gateForTier(tier string) (string, tierGate) {
	key := strings.ToUpper(strings.TrimSpace(tier))
	if gate, ok := tierGates[key]; ok {
		return key, gate
	}
	return "GUEST", tierGates["GUEST"]
}

func (s *Server) handleMatch(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	timer := util.StartTimer()

	pool, err := s.catalog.Search(c.Request.Context(), req.SeedSearchQuery)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	if len(pool) > s.poolLimit {
		pool = pool[:s.poolLimit]
	}

	allergies := req.Preferences.AllergyProfile.ToProfile()
	enriched := s.enrichPool(pool, allergies.Symptoms)

	// Scent DNA comes from the families of the liked candidates found in the
	// pool; liked ids absent from the pool contribute nothing.
	likedIDs := make(map[string]struct{}, len(req.Preferences.LikedPerfumeIDs))
	for _, id := range req.Preferences.LikedPerfumeIDs {
		likedIDs[id] = struct{}{}
	}
	var likedFamilies []string
	for _, p := range enriched {
		if _, ok := likedIDs[p.ID]; ok {
			likedFamilies = append(likedFamilies, p.Families...)
		}
	}

	pref := matching.UserPreference{
		LikedFamilies: likedFamilies,
		DislikedIDs:   emptySlice(req.Preferences.DislikedPerfumeIDs),
		Allergies:     allergies,
	}

	scored := matching.CalculateMatchScores(enriched, pref)

	tier, gate := gateForTier(req.Tier)
	limit := gate.Limit
	if limit <= 0 || limit > len(scored) {
		limit = len(scored)
	}

	visible := make([]ScoredPerfumeDTO, 0, limit)
	for _, sp := range scored[:limit] {
		visible = append(visible, ScoredFromModel(sp))
	}

	blurredEnd := limit + gate.Blurred
	if blurredEnd > len(scored) {
		blurredEnd = len(scored)
	}
	blurred := make([]BlurredItemDTO, 0, blurredEnd-limit)
	for _, sp := range scored[limit:blurredEnd] {
		blurred = append(blurred, BlurredFromModel(sp))
	}

	elapsed := timer.ElapsedMs()
	logrus.WithFields(logrus.Fields{
		"pool_size":  len(pool),
		"scored":     len(scored),
		"visible":    len(visible),
		"blurred":    len(blurred),
		"tier":       tier,
		"elapsed_ms": elapsed,
	}).Info("match request served")

	c.JSON(http.StatusOK, MatchResponse{
		Success:      true,
		Perfumes:     visible,
		BlurredItems: blurred,
		Tier:         tier,
		PoolSize:     len(pool),
		ElapsedMs:    elapsed,
	})
}

// enrichPool runs ingredient-safety enrichment across the pool on a bounded
// worker pool. A failed enrichment never drops the candidate: the record is
// flagged enrichment-failed with its safety left unknown, and the purchase
// gate downstream treats that as critical.
func (s *Server) enrichPool(pool []matching.Perfume, userSymptoms []string) []matching.Perfume {
	out := make([]matching.Perfume, len(pool))
	workerCount := enrichWorkerCount()
	if workerCount > len(pool) {
		workerCount = len(pool)
	}
	if workerCount < 1 {
		workerCount = 1
	}

	taskCh := make(chan int, workerCount*4)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range taskCh {
				enriched, err := s.enricher.Enrich(pool[idx], userSymptoms)
				if err != nil {
					logrus.WithError(err).WithField("perfume", pool[idx].ID).Warn("enrichment failed")
					failed := pool[idx]
					failed.Safety = matching.SafetyUnknown
					failed.EnrichmentFailed = true
					out[idx] = failed
					continue
				}
				out[idx] = enriched
			}
		}()
	}

	for idx := range pool {
		taskCh <- idx
	}
	close(taskCh)
	wg.Wait()
	return out
}

func enrichWorkerCount() int {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	if workers > 12 {
		workers = 12
	}
	return workers
}
