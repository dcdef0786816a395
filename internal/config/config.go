package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// JWTConfig defines the signing parameters for session tokens.
type JWTConfig struct {
	Issuer   string
	Audience string
	Secret   []byte
	TTL      time.Duration
}

// CollectionConfig names the Mongo collections.
type CollectionConfig struct {
	RoadEntries string
	FinalImages string
	Feedbacks   string
	Users       string
}

// StorageConfig は画像ディレクトリの設定。
type StorageConfig struct {
	UploadDir string
	FinalDir  string
	TempDir   string
}

// AnalysisConfig configures the external ML scripts.
type AnalysisConfig struct {
	Interpreter    string
	PredictScript  string
	DetectScript   string
	Timeout        time.Duration
	MaxConcurrency int
	QueueTimeout   time.Duration
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr              string
	MongoURI          string
	MongoDatabase     string
	Collections       CollectionConfig
	Timeout           time.Duration
	ServerLog         *log.Logger
	JWT               JWTConfig
	AllowedOrigins    []string
	Storage           StorageConfig
	Analysis          AnalysisConfig
	BroadcastFallback bool
	MaxUploadBytes    int64
}

// Load reads an optional .env file and the environment and returns a fully
// populated Config.
func Load() Config {
	logger := log.New(os.Stdout, "[inspectify-api] ", log.LstdFlags|log.Lshortfile)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf(".env の読み込みに失敗: %v", err)
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		log.Fatal("JWT_SECRET must be configured")
	}

	cfg := Config{
		Addr:          envOrDefault("HTTP_ADDR", ":5000"),
		MongoURI:      envOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: envOrDefault("MONGO_DB", "Safestreet"),
		Collections: CollectionConfig{
			RoadEntries: envOrDefault("ROAD_ENTRY_COLLECTION", "roadloc"),
			FinalImages: envOrDefault("FINAL_IMAGE_COLLECTION", "final_images"),
			Feedbacks:   envOrDefault("FEEDBACK_COLLECTION", "feedbacks"),
			Users:       envOrDefault("USER_COLLECTION", "login"),
		},
		Timeout:   parseDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		ServerLog: logger,
		JWT: JWTConfig{
			Issuer:   envOrDefault("JWT_ISSUER", "inspectify-api"),
			Audience: strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
			Secret:   []byte(secret),
			TTL:      parseDuration("JWT_TTL", 24*time.Hour),
		},
		AllowedOrigins: parseList("API_ALLOWED_ORIGINS", []string{"*"}),
		Storage: StorageConfig{
			UploadDir: envOrDefault("UPLOAD_DIR", "uploads"),
			FinalDir:  envOrDefault("FINAL_DIR", "final"),
			TempDir:   envOrDefault("TEMP_DIR", "temp"),
		},
		Analysis: AnalysisConfig{
			Interpreter:    envOrDefault("ANALYSIS_INTERPRETER", "python"),
			PredictScript:  envOrDefault("PREDICT_SCRIPT", "predict.py"),
			DetectScript:   envOrDefault("DETECT_SCRIPT", "detect_damage.py"),
			Timeout:        parseDuration("ANALYSIS_TIMEOUT", 60*time.Second),
			MaxConcurrency: parseInt("ANALYSIS_MAX_CONCURRENCY", 2),
			QueueTimeout:   parseDuration("ANALYSIS_QUEUE_TIMEOUT", 30*time.Second),
		},
		BroadcastFallback: parseBool("REALTIME_BROADCAST_FALLBACK", true),
		MaxUploadBytes:    int64(parseInt("MAX_UPLOAD_BYTES", 20<<20)),
	}

	cfg.ServerLog.Printf("loaded config: addr=%q db=%q analysisTimeout=%s maxConcurrency=%d broadcastFallback=%t",
		cfg.Addr, cfg.MongoDatabase, cfg.Analysis.Timeout, cfg.Analysis.MaxConcurrency, cfg.BroadcastFallback)

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func parseBool(key string, fallback bool) bool {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
