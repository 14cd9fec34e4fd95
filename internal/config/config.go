package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	SeedFile  string
	UserAgent string

	MaxDepth     int
	FetchTimeout time.Duration
	Iterations   int
	Stemming     bool

	ListenAddr    string
	CacheCapacity int
	CacheTTL      time.Duration
	PageSize      int
}

// Load reads configuration from the environment, after loading a .env file
// if one exists.
func Load() *Config {
	godotenv.Load()

	return &Config{
		DBPath:        getEnv("SEARCH_DB", "search.db"),
		SeedFile:      getEnv("SEED_FILE", "urls.txt"),
		UserAgent:     getEnv("USER_AGENT", "websearch-crawler/1.0"),
		MaxDepth:      getEnvInt("CRAWL_DEPTH", 1),
		FetchTimeout:  getEnvDuration("FETCH_TIMEOUT", 3*time.Second),
		Iterations:    getEnvInt("PAGERANK_ITERATIONS", 20),
		Stemming:      getEnvBool("STEMMING", false),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		CacheCapacity: getEnvInt("CACHE_CAPACITY", 500),
		CacheTTL:      getEnvDuration("CACHE_TTL", 30*time.Minute),
		PageSize:      getEnvInt("PAGE_SIZE", 10),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
