package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration. The detection thresholds and
// windows are tunable here rather than hard-coded: the defaults mirror
// the original demo values and are not validated against real-world
// precision/recall.
type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"pledgewatch-archive"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Reasoning gateway
	GatewayTimeout time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"8s"`

	// Retrieval
	TopKPassages   int `envconfig:"TOP_K_PASSAGES" default:"5"`
	RecentArticles int `envconfig:"RECENT_ARTICLES" default:"10"`

	// Alerting
	AlertCooldown   time.Duration `envconfig:"ALERT_COOLDOWN" default:"5m"`
	AlertReplaySize int           `envconfig:"ALERT_REPLAY_SIZE" default:"50"`

	// Background news sweep
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PLEDGEWATCH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
