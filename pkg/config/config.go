package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	pkgvalidator "github.com/insightloop-ai/insightloop/pkg/validator"
)

// Config holds application configuration. Credentials are loaded here and
// passed explicitly into the provider constructors; business logic never
// reads the process environment itself.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	OpenAI   OpenAIConfig
	Assembly AssemblyAIConfig
	Zoom     ZoomConfig
	Pipeline PipelineConfig
	Archive  ArchiveConfig
}

// OpenAIConfig holds the analysis capability credentials
type OpenAIConfig struct {
	APIKey  string `envconfig:"OPENAI_API_KEY" validate:"required"`
	BaseURL string `envconfig:"OPENAI_API_URL"`
	Model   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

// AssemblyAIConfig holds the transcription capability credentials and
// polling cadence
type AssemblyAIConfig struct {
	APIKey          string        `envconfig:"ASSEMBLYAI_API_KEY" validate:"required"`
	BaseURL         string        `envconfig:"ASSEMBLYAI_API_URL"`
	PollInterval    time.Duration `envconfig:"ASSEMBLYAI_POLL_INTERVAL" default:"3s"`
	PollMaxInterval time.Duration `envconfig:"ASSEMBLYAI_POLL_MAX_INTERVAL" default:"15s"`
}

// ZoomConfig holds Server-to-Server OAuth credentials for fetching cloud
// recordings. Optional: only validated when the zoom command is used.
type ZoomConfig struct {
	AccountID    string `envconfig:"ZOOM_ACCOUNT_ID"`
	ClientID     string `envconfig:"ZOOM_CLIENT_ID"`
	ClientSecret string `envconfig:"ZOOM_CLIENT_SECRET"`
	BaseURL      string `envconfig:"ZOOM_API_URL" default:"https://api.zoom.us/v2"`
	OAuthURL     string `envconfig:"ZOOM_OAUTH_URL" default:"https://zoom.us/oauth/token"`
}

// PipelineConfig holds pipeline timeouts and paths
type PipelineConfig struct {
	TranscriptionTimeout time.Duration `envconfig:"TRANSCRIPTION_TIMEOUT" default:"30m"`
	AnalysisTimeout      time.Duration `envconfig:"ANALYSIS_TIMEOUT" default:"5m"`
	OutputDir            string        `envconfig:"OUTPUT_DIR" default:"."`
	WorkDir              string        `envconfig:"WORK_DIR"`
	BatchConcurrency     int           `envconfig:"BATCH_CONCURRENCY" default:"2"`
}

// ArchiveConfig holds optional object-storage archival settings
type ArchiveConfig struct {
	Enabled         bool   `envconfig:"ARCHIVE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"ARCHIVE_ENDPOINT"`
	AccessKeyID     string `envconfig:"ARCHIVE_ACCESS_KEY"`
	SecretAccessKey string `envconfig:"ARCHIVE_SECRET_KEY"`
	BucketName      string `envconfig:"ARCHIVE_BUCKET" default:"insightloop-reports"`
	Prefix          string `envconfig:"ARCHIVE_PREFIX" default:"reports"`
	UseSSL          bool   `envconfig:"ARCHIVE_USE_SSL" default:"false"`
}

// Load loads configuration from the environment, reading a .env file
// first when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := pkgvalidator.New().Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Archive.Enabled {
		if c.Archive.Endpoint == "" {
			return fmt.Errorf("ARCHIVE_ENDPOINT is required when archiving is enabled")
		}
		if c.Archive.AccessKeyID == "" || c.Archive.SecretAccessKey == "" {
			return fmt.Errorf("ARCHIVE_ACCESS_KEY and ARCHIVE_SECRET_KEY are required when archiving is enabled")
		}
	}
	return nil
}

// ZoomConfigured reports whether the Zoom integration can be used
func (c *Config) ZoomConfigured() bool {
	return c.Zoom.AccountID != "" && c.Zoom.ClientID != "" && c.Zoom.ClientSecret != ""
}
