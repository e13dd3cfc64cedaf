package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	CORS     CORSConfig
	Log      LogConfig
	Roster   RosterConfig
	Paysheet PaysheetConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RosterConfig locates the per-team subcontractor list files.
type RosterConfig struct {
	Dir          string
	DefaultNames []string
}

// PaysheetConfig governs report ingestion, template layout, and artifact storage.
type PaysheetConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	MaxUploadBytes  int64

	ReportSheetName string

	// Template layout. The reference template keeps its column headers on
	// row 12, job rows on 13-29, and the summary formulas on row 30.
	HeaderRow    int
	DataStartRow int
	DataEndRow   int

	// Bounded region scanned for the "Week Of" label, and where the stamp
	// lands when the label is absent.
	WeekOfScanRows    int
	WeekOfScanCols    int
	DefaultWeekOfCell string

	DescriptionLimit int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Roster = RosterConfig{
		Dir:          v.GetString("ROSTER_DIR"),
		DefaultNames: splitAndTrim(v.GetString("ROSTER_DEFAULT_NAMES")),
	}

	maxUpload := v.GetInt64("PAYSHEET_MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	cfg.Paysheet = PaysheetConfig{
		StorageDir:        v.GetString("PAYSHEET_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("PAYSHEET_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("PAYSHEET_SIGNED_URL_TTL"), 24*time.Hour),
		MaxUploadBytes:    maxUpload,
		ReportSheetName:   v.GetString("PAYSHEET_REPORT_SHEET"),
		HeaderRow:         v.GetInt("PAYSHEET_HEADER_ROW"),
		DataStartRow:      v.GetInt("PAYSHEET_DATA_START_ROW"),
		DataEndRow:        v.GetInt("PAYSHEET_DATA_END_ROW"),
		WeekOfScanRows:    v.GetInt("PAYSHEET_WEEKOF_SCAN_ROWS"),
		WeekOfScanCols:    v.GetInt("PAYSHEET_WEEKOF_SCAN_COLS"),
		DefaultWeekOfCell: v.GetString("PAYSHEET_WEEKOF_DEFAULT_CELL"),
		DescriptionLimit:  v.GetInt("PAYSHEET_DESCRIPTION_LIMIT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ROSTER_DIR", "./rosters")
	v.SetDefault("ROSTER_DEFAULT_NAMES", "Fire Sprinkler Co.,HVAC Masters,Electric Pros")

	v.SetDefault("PAYSHEET_STORAGE_DIR", "./paysheets")
	v.SetDefault("PAYSHEET_SIGNED_URL_SECRET", "dev_paysheet_secret")
	v.SetDefault("PAYSHEET_SIGNED_URL_TTL", "24h")
	v.SetDefault("PAYSHEET_MAX_UPLOAD_BYTES", 10*1024*1024)
	v.SetDefault("PAYSHEET_REPORT_SHEET", "Worksheet")
	v.SetDefault("PAYSHEET_HEADER_ROW", 12)
	v.SetDefault("PAYSHEET_DATA_START_ROW", 13)
	v.SetDefault("PAYSHEET_DATA_END_ROW", 29)
	v.SetDefault("PAYSHEET_WEEKOF_SCAN_ROWS", 9)
	v.SetDefault("PAYSHEET_WEEKOF_SCAN_COLS", 4)
	v.SetDefault("PAYSHEET_WEEKOF_DEFAULT_CELL", "B4")
	v.SetDefault("PAYSHEET_DESCRIPTION_LIMIT", 100)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
