package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"askseba/backend/internal/api"
	"askseba/backend/internal/fragella"
)

func main() {
	baseDir, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("determine working directory: %v", err)
	}

	dataDir := filepath.Join(baseDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logrus.Fatalf("create data directory: %v", err)
	}

	fragellaCfg := fragella.Config{
		APIKey:  os.Getenv("FRAGELLA_API_KEY"),
		BaseURL: os.Getenv("FRAGELLA_BASE_URL"),
	}
	if timeout := os.Getenv("FRAGELLA_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			fragellaCfg.Timeout = d
		}
	}
	if ttl := os.Getenv("FRAGELLA_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			fragellaCfg.CacheTTL = d
		}
	}
	if limit := os.Getenv("FRAGELLA_LIMIT"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			fragellaCfg.Limit = v
		}
	}

	cacheTTL := 6 * time.Hour
	if ttl := strings.TrimSpace(os.Getenv("SEARCH_CACHE_TTL")); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			cacheTTL = d
		}
	}

	poolLimit := 2000
	if v := strings.TrimSpace(os.Getenv("POOL_LIMIT")); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			poolLimit = val
		}
	}

	allowedOrigins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"https://askseba.com",
	}
	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		allowedOrigins = allowedOrigins[:0]
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	cfg := api.Config{
		DBPath:          filepath.Join(dataDir, "askseba.db"),
		IngredientsPath: filepath.Join(dataDir, "ingredient_safety.json"),
		FallbackPath:    filepath.Join(dataDir, "fallback_perfumes.json"),
		AllowedOrigins:  allowedOrigins,
		FragellaConfig:  fragellaCfg,
		CacheTTL:        cacheTTL,
		PoolLimit:       poolLimit,
	}

	if override := strings.TrimSpace(os.Getenv("ASKSEBA_DB_PATH")); override != "" {
		cfg.DBPath = override
	}
	if override := strings.TrimSpace(os.Getenv("INGREDIENT_SAFETY_PATH")); override != "" {
		cfg.IngredientsPath = override
	}
	if override := strings.TrimSpace(os.Getenv("FALLBACK_PERFUMES_PATH")); override != "" {
		cfg.FallbackPath = override
	}

	server, err := api.NewServer(cfg)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("starting askseba backend on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
