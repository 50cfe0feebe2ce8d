package config

import (
	"log"
	"os"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port                  string
	CORSAllowOrigin       []string
	AirtableAPIKey        string
	AirtableBaseID        string
	AirtableBaseURL       string
	AirtableProjectsTable string
	AirtableUpdatesTable  string
	AnthropicAPIKey       string
	AnthropicModel        string
	UpdatePromptPath      string
	DatabaseURL           string
	Env                   string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && os.Getenv("AIRTABLE_API_KEY") == "" {
		log.Printf("AIRTABLE_API_KEY is not set; datastore operations will report not configured")
	}

	return Config{
		Port:                  getEnv("PORT", "8080"),
		CORSAllowOrigin:       splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		AirtableAPIKey:        getEnv("AIRTABLE_API_KEY", ""),
		AirtableBaseID:        getEnv("AIRTABLE_BASE_ID", "app8CI7NAZqhQ4G1Y"),
		AirtableBaseURL:       getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com/v0"),
		AirtableProjectsTable: getEnv("AIRTABLE_PROJECTS_TABLE", "Projects"),
		AirtableUpdatesTable:  getEnv("AIRTABLE_UPDATES_TABLE", "Updates"),
		AnthropicAPIKey:       getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:        getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		UpdatePromptPath:      getEnv("UPDATE_PROMPT_PATH", ""),
		DatabaseURL:           dbURL,
		Env:                   env,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
