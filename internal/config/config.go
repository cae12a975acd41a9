package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Analysis Analysis `mapstructure:"analysis"`
	Dispatch Dispatch `mapstructure:"dispatch"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Articles Articles `mapstructure:"articles"`
	Output   Output   `mapstructure:"output"`
	Logging  Logging  `mapstructure:"logging"`
	PostHog  PostHog  `mapstructure:"posthog"`
	Tracing  Tracing  `mapstructure:"tracing"`
}

// App holds general application configuration
type App struct {
	Debug bool   `mapstructure:"debug"`
	Name  string `mapstructure:"name"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Analysis controls the content analyzer and its optional inference collaborator
type Analysis struct {
	// UseInference enables the Gemini-backed classifier. When false the
	// analyzer relies on local heuristics only.
	UseInference bool   `mapstructure:"use_inference"`
	Timeout      string `mapstructure:"timeout"`
	WordsPerMin  int    `mapstructure:"words_per_minute"`
}

// Dispatch controls the rendering dispatcher
type Dispatch struct {
	// UseAILayout is the default for requests that do not say otherwise.
	UseAILayout      bool `mapstructure:"use_ai_layout"`
	BatchConcurrency int  `mapstructure:"batch_concurrency"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string     `mapstructure:"host"`
	Port         int        `mapstructure:"port"`
	ReadTimeout  string     `mapstructure:"read_timeout"`
	WriteTimeout string     `mapstructure:"write_timeout"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Database holds the article store connection
type Database struct {
	ConnectionString string `mapstructure:"connection_string"`
	Timeout          string `mapstructure:"timeout"`
}

// Articles configures the file-backed article source used when no database is set
type Articles struct {
	File string `mapstructure:"file"`
}

// Output holds rendered output configuration
type Output struct {
	Directory string `mapstructure:"directory"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PostHog holds product analytics configuration
type PostHog struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Host    string `mapstructure:"host"`
}

// Tracing holds OpenTelemetry configuration
type Tracing struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".pressroom")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.name", "pressroom")

	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.max_tokens", 512)
	viper.SetDefault("ai.gemini.temperature", 0.2)

	viper.SetDefault("analysis.use_inference", false)
	viper.SetDefault("analysis.timeout", "5s")
	viper.SetDefault("analysis.words_per_minute", 200)

	viper.SetDefault("dispatch.use_ai_layout", false)
	viper.SetDefault("dispatch.batch_concurrency", 4)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.cors.enabled", false)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	viper.SetDefault("database.timeout", "5s")

	viper.SetDefault("output.directory", "rendered")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("posthog.enabled", false)
	viper.SetDefault("posthog.host", "https://app.posthog.com")

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.endpoint", "localhost:4317")
	viper.SetDefault("tracing.service_name", "pressroom")
	viper.SetDefault("tracing.sample_rate", 1.0)
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("database.connection_string", []string{
		"DATABASE_URL",
		"PRESSROOM_DATABASE_URL",
	})

	bindEnvKeys("posthog.api_key", []string{
		"POSTHOG_API_KEY",
	})

	bindEnvKeys("tracing.endpoint", []string{
		"OTEL_EXPORTER_OTLP_ENDPOINT",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"PRESSROOM_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig ensures configuration values are usable
func validateConfig(config *Config) error {
	var errors []string

	durations := map[string]string{
		"analysis.timeout":     config.Analysis.Timeout,
		"server.read_timeout":  config.Server.ReadTimeout,
		"server.write_timeout": config.Server.WriteTimeout,
		"database.timeout":     config.Database.Timeout,
	}
	for key, duration := range durations {
		if duration == "" {
			continue
		}
		if d, err := time.ParseDuration(duration); err != nil || d <= 0 {
			errors = append(errors, fmt.Sprintf("invalid duration for %s: %s", key, duration))
		}
	}

	if config.Analysis.UseInference && config.AI.Gemini.APIKey == "" {
		errors = append(errors, "analysis.use_inference requires a Gemini API key. Set GEMINI_API_KEY or ai.gemini.api_key")
	}

	if config.Analysis.WordsPerMin <= 0 {
		errors = append(errors, "analysis.words_per_minute must be positive")
	}

	if config.Dispatch.BatchConcurrency <= 0 {
		errors = append(errors, "dispatch.batch_concurrency must be positive")
	}

	if config.PostHog.Enabled && config.PostHog.APIKey == "" {
		errors = append(errors, "posthog.enabled requires posthog.api_key (POSTHOG_API_KEY)")
	}

	if config.Tracing.SampleRate < 0 || config.Tracing.SampleRate > 1 {
		errors = append(errors, fmt.Sprintf("tracing.sample_rate must be within [0,1], got %v", config.Tracing.SampleRate))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AnalysisTimeout returns the parsed inference timeout.
func (a Analysis) AnalysisTimeout() time.Duration {
	return parseDurationOr(a.Timeout, 5*time.Second)
}

// ConnectTimeout returns the parsed database connect timeout.
func (d Database) ConnectTimeout() time.Duration {
	return parseDurationOr(d.Timeout, 5*time.Second)
}

// Timeouts returns the parsed read and write timeouts.
func (s Server) Timeouts() (read, write time.Duration) {
	return parseDurationOr(s.ReadTimeout, 15*time.Second), parseDurationOr(s.WriteTimeout, 30*time.Second)
}

// Addr returns host:port.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return fallback
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
