package config

import (
	"fmt"
	"os"
	"strings"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Database: DatabaseConfig{
			URL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		},
		AI: AIConfig{
			OpenAIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			HuggingFaceKey: strings.TrimSpace(os.Getenv("HUGGINGFACEHUB_API_TOKEN")),
			ArkAPIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			ArkModel:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
			ArkBaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			ArkRegion:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// loadServerConfig parses the listen address. PORT accepts either a bare
// port or a full address like ":8080" / "127.0.0.1:8080".
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// DatabaseConfig points at the durable conversation store.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a durable backing was configured at all.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// AIConfig carries the text-generation backend credentials. Which providers
// are available follows entirely from which of these are set.
type AIConfig struct {
	OpenAIKey      string
	HuggingFaceKey string
	ArkAPIKey      string
	ArkModel       string
	ArkBaseURL     string
	ArkRegion      string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
