package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlaceholderAPIKey is the value shipped in sample env files. A key containing
// it is treated as missing.
const PlaceholderAPIKey = "YOUR_API_KEY_HERE"

// Config holds application configuration.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	JWTSecret   string `yaml:"jwt_secret"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	DataDir      string `yaml:"data_dir"`
	RainfallCSV  string `yaml:"rainfall_csv"`
	BoilersCSV   string `yaml:"boilers_csv"`
	RoadsCSV     string `yaml:"roads_csv"`
	FabSeriesCSV string `yaml:"fab_series_csv"`
	ModelPath    string `yaml:"model_path"`

	GovUsername string `yaml:"gov_username"`
	GovPassword string `yaml:"gov_password"`

	Debug bool `yaml:"debug"`
}

// Default returns the configuration used when neither a file nor the
// environment sets a value.
func Default() Config {
	return Config{
		Port:         "3000",
		GeminiModel:  "gemini-1.5-flash-latest",
		DataDir:      "data",
		RainfallCSV:  "karnataka_avg_rain_2023.csv",
		BoilersCSV:   "District_wise_Registered_Boilers.csv",
		RoadsCSV:     "Summary_of_length_of_roads.csv",
		FabSeriesCSV: "synthetic_fab_data.csv",
		ModelPath:    filepath.Join("model", "fab_lstm_forecaster.json"),
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins).
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.RainfallCSV = getEnv("RAINFALL_CSV", cfg.RainfallCSV)
	cfg.BoilersCSV = getEnv("BOILERS_CSV", cfg.BoilersCSV)
	cfg.RoadsCSV = getEnv("ROADS_CSV", cfg.RoadsCSV)
	cfg.FabSeriesCSV = getEnv("FAB_SERIES_CSV", cfg.FabSeriesCSV)
	cfg.ModelPath = getEnv("MODEL_PATH", cfg.ModelPath)
	cfg.GovUsername = getEnv("GOV_USERNAME", cfg.GovUsername)
	cfg.GovPassword = getEnv("GOV_PASSWORD", cfg.GovPassword)
	cfg.Debug = getEnvBool("DEBUG", cfg.Debug)

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// DataPath resolves a dataset file name against DataDir. Absolute names are
// returned unchanged.
func (c Config) DataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// HasGeminiKey reports whether a usable generation credential is configured.
func (c Config) HasGeminiKey() bool {
	return ValidAPIKey(c.GeminiAPIKey)
}

// ValidAPIKey rejects empty and placeholder credentials.
func ValidAPIKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && !strings.Contains(key, PlaceholderAPIKey)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
