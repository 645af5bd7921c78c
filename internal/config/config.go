package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	DatabasePath  string         `json:"database_path"`
	APIPort       string         `json:"api_port"`
	LogLevel      string         `json:"log_level"`
	DataDir       string         `json:"data_dir"`
	CORSOrigins   string         `json:"cors_origins"`
	MaxConcurrent int            `json:"max_concurrent"`
	WindowDays    int            `json:"window_days"`
	AI            AIConfig       `json:"ai"`
	IMAP          IMAPConfig     `json:"imap"`
	Calendar      CalendarConfig `json:"calendar"`
}

// AIConfig configures the analysis/priority model backend.
type AIConfig struct {
	Provider   string `json:"provider"`
	APIKey     string `json:"api_key"`
	Model      string `json:"model"`
	BaseURL    string `json:"base_url"`
	ImageModel string `json:"image_model"`
}

// IMAPConfig configures the inbound mailbox.
type IMAPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	UseSSL   bool   `json:"use_ssl"`
	AuthType string `json:"auth_type"` // password or oauth2
}

// CalendarConfig configures the Google Calendar collaborator.
type CalendarConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	CalendarID   string `json:"calendar_id"`
}

// Default configuration values
const (
	DefaultDatabasePath  = "data/focusmate.db"
	DefaultAPIPort       = "8080"
	DefaultLogLevel      = "INFO"
	DefaultDataDir       = "data"
	DefaultCORSOrigins   = "*"
	DefaultMaxConcurrent = 4
	DefaultWindowDays    = 3
	DefaultIMAPPort      = 993
	DefaultCalendarID    = "primary"
)

// Load loads configuration from environment variables and config file
// Priority: Environment variables > Config file > Default values
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:  DefaultDatabasePath,
		APIPort:       DefaultAPIPort,
		LogLevel:      DefaultLogLevel,
		DataDir:       DefaultDataDir,
		CORSOrigins:   DefaultCORSOrigins,
		MaxConcurrent: DefaultMaxConcurrent,
		WindowDays:    DefaultWindowDays,
		IMAP: IMAPConfig{
			Port:     DefaultIMAPPort,
			UseSSL:   true,
			AuthType: "password",
		},
		Calendar: CalendarConfig{
			CalendarID: DefaultCalendarID,
		},
	}

	// Config file is optional
	_ = cfg.loadFromFile()

	// Override with environment variables
	cfg.loadFromEnv()

	return cfg, nil
}

// loadFromFile loads configuration from config.json file
func (c *Config) loadFromFile() error {
	// Look for config file in current directory and data directory
	configPaths := []string{
		"config.json",
		filepath.Join(c.DataDir, "config.json"),
	}

	for _, path := range configPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		if err := json.Unmarshal(data, c); err != nil {
			return err
		}
		return nil
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if val := os.Getenv("FOCUSMATE_DATABASE_PATH"); val != "" {
		c.DatabasePath = val
	}
	if val := os.Getenv("FOCUSMATE_API_PORT"); val != "" {
		c.APIPort = val
	}
	if val := os.Getenv("FOCUSMATE_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("FOCUSMATE_DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("FOCUSMATE_CORS_ORIGINS"); val != "" {
		c.CORSOrigins = val
	}
	if val := os.Getenv("FOCUSMATE_MAX_CONCURRENT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.MaxConcurrent = n
		}
	}
	if val := os.Getenv("FOCUSMATE_AI_PROVIDER"); val != "" {
		c.AI.Provider = val
	}
	if val := os.Getenv("FOCUSMATE_AI_API_KEY"); val != "" {
		c.AI.APIKey = val
	}
	if val := os.Getenv("FOCUSMATE_AI_MODEL"); val != "" {
		c.AI.Model = val
	}
	if val := os.Getenv("FOCUSMATE_AI_BASE_URL"); val != "" {
		c.AI.BaseURL = val
	}
	if val := os.Getenv("FOCUSMATE_IMAP_HOST"); val != "" {
		c.IMAP.Host = val
	}
	if val := os.Getenv("FOCUSMATE_IMAP_PORT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.IMAP.Port = n
		}
	}
	if val := os.Getenv("FOCUSMATE_IMAP_USERNAME"); val != "" {
		c.IMAP.Username = val
	}
	if val := os.Getenv("FOCUSMATE_IMAP_PASSWORD"); val != "" {
		c.IMAP.Password = val
	}
	if val := os.Getenv("FOCUSMATE_CALENDAR_CLIENT_ID"); val != "" {
		c.Calendar.ClientID = val
	}
	if val := os.Getenv("FOCUSMATE_CALENDAR_CLIENT_SECRET"); val != "" {
		c.Calendar.ClientSecret = val
	}
	if val := os.Getenv("FOCUSMATE_CALENDAR_REFRESH_TOKEN"); val != "" {
		c.Calendar.RefreshToken = val
	}
	if val := os.Getenv("FOCUSMATE_CALENDAR_ID"); val != "" {
		c.Calendar.CalendarID = val
	}
}

// Save saves the current configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
