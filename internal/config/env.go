package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string

	// AI configuration
	AIAPIKey   string
	EmbedModel string
	EmbedDim   int
	GenModel   string

	// Ingestion tuning
	ChunkSize       int
	ChunkOverlap    int
	SummaryMaxChars int
	SearchTopK      int

	// Local directories
	UploadDir  string
	WatchDir   string
	ArchiveDir string

	// SharePoint
	SharePointSiteURL string
	SharePointCookie  string

	// Google Drive OAuth
	DriveCredentialsPath string
	DriveTokenPath       string

	// S3 archive (optional; archiving is disabled when credentials are absent)
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	JWTSecret string

	FlasherPath string
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		AIAPIKey:   getEnv("GEMINI_API_KEY", ""),
		EmbedModel: getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:   getEnvInt("EMBED_DIM", 768),
		GenModel:   getEnv("GEN_MODEL", "gemini-1.5-flash"),

		ChunkSize:       getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 200),
		SummaryMaxChars: getEnvInt("SUMMARY_MAX_CHARS", 4000),
		SearchTopK:      getEnvInt("SEARCH_TOP_K", 5),

		UploadDir:  getEnv("UPLOAD_DIR", "uploads"),
		WatchDir:   getEnv("WATCH_DIR", "data_archive/watched"),
		ArchiveDir: getEnv("ARCHIVE_DIR", "data_archive"),

		SharePointSiteURL: getEnv("SHAREPOINT_SITE_URL", ""),
		SharePointCookie:  getEnv("SHAREPOINT_COOKIE", ""),

		DriveCredentialsPath: getEnv("DRIVE_CREDENTIALS_PATH", "credentials.json"),
		DriveTokenPath:       getEnv("DRIVE_TOKEN_PATH", "token.json"),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "insight-archive"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		FlasherPath: getEnv("FLASHER_PATH", "flasher_config.json"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
