package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"askseba/backend/internal/catalog"
	"askseba/backend/internal/fragella"
	"askseba/backend/internal/ifra"
	"askseba/backend/internal/prices"
	"askseba/backend/internal/store"
)

// Config defines server dependencies.
type Config struct {
	DBPath          string
	IngredientsPath string
	FallbackPath    string
	AllowedOrigins  []string
	SilentDB        bool
	FragellaConfig  fragella.Config
	CacheTTL        time.Duration
	PoolLimit       int
}

// Server wires HTTP handlers with persistence, the catalog pool, enrichment
// and scoring.
type Server struct {
	db              *store.Database
	catalog         *catalog.Service
	enricher        *ifra.Service
	prices          *prices.Service
	ingredientsPath string
	fallbackPath    string
	allowedOrigins  []string
	poolLimit       int
	refreshNotifier *RefreshNotifier
	jobMu           sync.Mutex
	activeJob       *refreshJob
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}
	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}

	ingredientsPath := cfg.IngredientsPath
	if ingredientsPath == "" {
		ingredientsPath = filepath.Join("data", "ingredient_safety.json")
	}
	fallbackPath := cfg.FallbackPath
	if fallbackPath == "" {
		fallbackPath = filepath.Join("data", "fallback_perfumes.json")
	}

	enricher, err := ifra.NewService(ingredientsPath)
	if err != nil {
		return nil, fmt.Errorf("ingredient safety table: %w", err)
	}

	var client *fragella.Client
	if strings.TrimSpace(cfg.FragellaConfig.APIKey) == "" {
		logrus.Info("Fragella lookup disabled - no API key configured")
	} else {
		client, err = fragella.NewClient(cfg.FragellaConfig)
		if err != nil {
			return nil, fmt.Errorf("fragella client: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"limit":   cfg.FragellaConfig.Limit,
			"ttl":     cfg.FragellaConfig.CacheTTL,
			"timeout": cfg.FragellaConfig.Timeout,
		}).Info("Fragella lookup enabled")
	}

	poolLimit := cfg.PoolLimit
	if poolLimit <= 0 {
		poolLimit = 2000
	}

	server := &Server{
		db:              db,
		catalog:         catalog.NewService(db, client, fallbackPath, cfg.CacheTTL),
		enricher:        enricher,
		prices:          prices.NewService(db),
		ingredientsPath: ingredientsPath,
		fallbackPath:    fallbackPath,
		allowedOrigins:  cfg.AllowedOrigins,
		poolLimit:       poolLimit,
		refreshNotifier: NewRefreshNotifier(),
	}
	return server, nil
}

// Close releases the underlying database connection.
func (s *Server) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.POST("/match", s.handleMatch)
		api.GET("/prices/compare", s.handlePriceCompare)
		api.GET("/health/perfume-data", s.handlePerfumeDataHealth)
		api.POST("/catalog/refresh", s.handleRefresh)
		api.GET("/catalog/refresh/status", s.handleRefreshStatus)
		api.DELETE("/catalog/refresh/:jobID", s.handleCancelRefresh)
		api.GET("/catalog/refresh/stream", s.handleRefreshStream)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	stats, err := s.catalog.Stats()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ingredients_path": s.ingredientsPath,
		"fallback_path":    s.fallbackPath,
		"pool_limit":       s.poolLimit,
		"remote_enabled":   stats.RemoteEnabled,
		"cache_entries":    stats.CacheEntries,
		"local_perfumes":   stats.LocalPerfumes,
	})
}

// handlePerfumeDataHealth reports whether the candidate pool is healthy or
// stuck on the bundled fallback file.
func (s *Server) handlePerfumeDataHealth(c *gin.Context) {
	stats, err := s.catalog.Stats()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	fallbackOnly := stats.CacheEntries == 0 && stats.LocalPerfumes == 0
	recommendation := "ok"
	if fallbackOnly {
		if stats.RemoteEnabled {
			recommendation = "cache empty - run POST /api/catalog/refresh"
		} else {
			recommendation = "no API key - pool limited to fallback file"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"cache_entries":  stats.CacheEntries,
		"local_perfumes": stats.LocalPerfumes,
		"fallback_size":  stats.FallbackSize,
		"remote_enabled": stats.RemoteEnabled,
		"fallback_only":  fallbackOnly,
		"recommendation": recommendation,
	})
}

func (s *Server) handlePriceCompare(c *gin.Context) {
	perfumeID := strings.TrimSpace(c.Query("perfumeId"))
	if perfumeID == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("perfumeId is required"))
		return
	}
	name := strings.TrimSpace(c.Query("name"))
	brand := strings.TrimSpace(c.Query("brand"))

	comparison, err := s.prices.Compare(perfumeID, name, brand)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

func (s *Server) handleRefreshStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.refreshNotifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("refresh websocket connected")
	defer s.refreshNotifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("refresh websocket closed")
			} else {
				logrus.WithError(err).Warn("refresh websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
