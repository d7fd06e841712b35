package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Configuration struct {
	ApiPort  string `json:"api_port"`
	LogPath  string `json:"log_path"`
	LogLevel string `json:"log_level"`
	Timezone string `json:"timezone"` // fuso do "dia de negócio"

	Database string `json:"database"` // "sqlite3" ou "postgres"
	DbPath   string `json:"db_path"`  // arquivo do sqlite3
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`
	DbLog    bool   `json:"db_log"`

	UltraMsg struct {
		Token          string `json:"token"`
		Instance       string `json:"instance"`
		BaseURL        string `json:"base_url"`
		CountryCode    string `json:"country_code"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"ultramsg"`

	// ApiToken protege as rotas /api (header X-Api-Token); vazio = aberto
	ApiToken    string   `json:"api_token"`
	CorsOrigins []string `json:"cors_origins"`

	Jobs struct {
		Disabled                bool `json:"disabled"`
		ActivityIntervalMinutes int  `json:"activity_interval_minutes"`
		BillingIntervalMinutes  int  `json:"billing_interval_minutes"`
		ReportIntervalMinutes   int  `json:"report_interval_minutes"`
		BillingBatchSize        int  `json:"billing_batch_size"`
	} `json:"jobs"`

	// conta criada no primeiro boot, se ainda não existir
	Superuser struct {
		CPF      string `json:"cpf"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"superuser"`
}

// Get loads the configuration or stops the process.
func Get(path string) Configuration {
	c, err := Load(path)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

// Load reads the JSON file at path (a missing file means "defaults only"),
// applies environment overrides and fills defaults.
func Load(path string) (Configuration, error) {
	var c Configuration
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(b, &c); err != nil {
				return c, fmt.Errorf("config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return c, fmt.Errorf("config %s: %w", path, err)
		}
	}

	c.applyEnv()
	c.applyDefaults()

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return c, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return c, nil
}

func (c *Configuration) applyEnv() {
	envOverride(&c.ApiPort, "API_PORT")
	envOverride(&c.LogPath, "LOG_PATH")
	envOverride(&c.LogLevel, "LOG_LEVEL")
	envOverride(&c.Timezone, "TIMEZONE")
	envOverride(&c.Database, "DATABASE")
	envOverride(&c.DbPath, "DB_PATH")
	envOverride(&c.DbHost, "DB_HOST")
	envOverride(&c.DbPort, "DB_PORT")
	envOverride(&c.DbUser, "DB_USER")
	envOverride(&c.DbName, "DB_NAME")
	envOverride(&c.DbPass, "DB_PASS")
	envOverride(&c.UltraMsg.Token, "ULTRAMSG_TOKEN")
	envOverride(&c.UltraMsg.Instance, "ULTRAMSG_INSTANCE")
	envOverride(&c.UltraMsg.BaseURL, "ULTRAMSG_BASE_URL")
	envOverride(&c.ApiToken, "API_TOKEN")
	envOverrideInt(&c.Jobs.BillingBatchSize, "BILLING_BATCH_SIZE")
	envOverride(&c.Superuser.CPF, "SUPERUSER_CPF")
	envOverride(&c.Superuser.Email, "SUPERUSER_EMAIL")
	envOverride(&c.Superuser.Password, "SUPERUSER_PASSWORD")
}

// defaults (pra evitar nil/zero chato)
func (c *Configuration) applyDefaults() {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Sao_Paulo"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.DbPath == "" {
		c.DbPath = "db/database.db"
	}
	if c.UltraMsg.CountryCode == "" {
		c.UltraMsg.CountryCode = "55"
	}
	if c.UltraMsg.TimeoutSeconds <= 0 {
		c.UltraMsg.TimeoutSeconds = 30
	}
	if c.Jobs.ActivityIntervalMinutes <= 0 {
		c.Jobs.ActivityIntervalMinutes = 60
	}
	if c.Jobs.BillingIntervalMinutes <= 0 {
		c.Jobs.BillingIntervalMinutes = 60
	}
	if c.Jobs.ReportIntervalMinutes <= 0 {
		c.Jobs.ReportIntervalMinutes = 24 * 60
	}
	if c.Jobs.BillingBatchSize <= 0 {
		c.Jobs.BillingBatchSize = 100
	}
}

// Location returns the business time zone. Load already validated it.
func (c Configuration) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Interval converts a job interval in minutes.
func Interval(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}

func (c Configuration) GatewayTimeout() time.Duration {
	return time.Duration(c.UltraMsg.TimeoutSeconds) * time.Second
}

func envOverride(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*dst = n
	}
}
