package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Gemini    GeminiConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Log       LogConfig
	Fallback  FallbackConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string
}

type QdrantConfig struct {
	Enabled    bool
	URL        string
	APIKey     string
	Collection string
}

// GeminiConfig holds the oracle model settings. Generation stages use Model and
// Temperature, the roadmap critique uses EvalModel and EvalTemperature.
type GeminiConfig struct {
	APIKey          string
	Model           string
	EvalModel       string
	EmbedModel      string
	Temperature     float32
	EvalTemperature float32
	MaxOutputTokens int32
}

// RateLimitConfig controls the quota protection around every oracle call.
type RateLimitConfig struct {
	MinRequestDelay   time.Duration
	MaxRetries        int
	RetryInitialDelay time.Duration
}

type StorageConfig struct {
	OutputDir   string
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
}

type LogConfig struct {
	Mode string
}

// FallbackConfig is the placeholder data the pipeline substitutes when a stage
// cannot be completed.
type FallbackConfig struct {
	SkillCategories      []string
	RoadmapPhases        []FallbackPhase
	EvaluationNote       string
	SuggestedImprovement string
}

type FallbackPhase struct {
	Name          string
	Skills        []string
	Resources     []string
	Projects      []string
	EstimatedTime string
}

func Load() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "career_roadmap"),
			Path:     getEnv("DB_PATH", "career_roadmap.db"),
		},
		Qdrant: QdrantConfig{
			Enabled:    getEnvAsBool("QDRANT_ENABLED", false),
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "learning_resources"),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("MODEL_NAME", "gemini-1.5-flash"),
			EvalModel:       getEnv("EVAL_MODEL_NAME", "gemini-1.5-flash"),
			EmbedModel:      getEnv("EMBED_MODEL_NAME", "text-embedding-004"),
			Temperature:     getEnvAsFloat32("TEMPERATURE", 0.7),
			EvalTemperature: getEnvAsFloat32("EVAL_TEMPERATURE", 0.5),
			MaxOutputTokens: int32(getEnvAsInt("MAX_TOKENS", 2048)),
		},
		RateLimit: RateLimitConfig{
			MinRequestDelay:   getEnvAsDuration("MIN_DELAY_BETWEEN_REQUESTS", "3s"),
			MaxRetries:        getEnvAsInt("MAX_RETRIES", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_DELAY", "5s"),
		},
		Storage: StorageConfig{
			OutputDir:   getEnv("OUTPUT_DIR", "outputs"),
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 1),
			QueueSize:    getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
		},
		Log: LogConfig{
			Mode: getEnv("LOG_MODE", "development"),
		},
		Fallback: DefaultFallback(),
	}
}

// DefaultFallback returns the placeholder data used when no override is configured.
func DefaultFallback() FallbackConfig {
	return FallbackConfig{
		SkillCategories: []string{
			"Technical Skills",
			"Soft Skills",
			"Domain-Specific Skills",
			"Certifications",
			"Experience Requirements",
		},
		RoadmapPhases: []FallbackPhase{
			{
				Name:          "Foundation Phase",
				Skills:        []string{"Basic fundamentals"},
				Resources:     []string{"Online courses"},
				Projects:      []string{"Simple exercises"},
				EstimatedTime: "2-4 weeks",
			},
			{
				Name:          "Development Phase",
				Skills:        []string{"Core skills from extracted list"},
				Resources:     []string{"Documentation and tutorials"},
				Projects:      []string{"Practice projects"},
				EstimatedTime: "1-2 months",
			},
		},
		EvaluationNote:       "Could not perform evaluation due to API rate limits.",
		SuggestedImprovement: "Consider reviewing the roadmap manually.",
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("3s") and bare numbers of seconds ("3").
func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if secs, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
