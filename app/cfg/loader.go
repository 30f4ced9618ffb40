package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Notification configuration
	WebhookURL    string `long:"webhook-url" env:"WEBHOOK_URL" description:"DingTalk robot webhook URL (required)" required:"true"`
	WebhookSecret string `long:"webhook-secret" env:"WEBHOOK_SECRET" description:"DingTalk robot signing secret (optional)"`

	// Upstream configuration
	CookieString       string `long:"cookie" env:"BILI_COOKIE" description:"Pre-baked browser cookie string for api.bilibili.com"`
	UserAgent          string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36" description:"User agent string for upstream requests"`
	MinRequestInterval int    `long:"min-request-interval" env:"MIN_REQUEST_INTERVAL" default:"3" description:"Minimum spacing between upstream requests in seconds"`
	FetchLimit         int    `long:"fetch-limit" env:"FETCH_LIMIT" default:"50" description:"Upper bound on items per global feed fetch"`

	// Monitoring configuration
	QuickCheckInterval int `long:"quick-interval" env:"QUICK_CHECK_INTERVAL" default:"1" description:"Global update probe interval in minutes"`
	FullCheckInterval  int `long:"full-interval" env:"FULL_CHECK_INTERVAL" default:"5" description:"Per-creator fallback check interval in minutes"`
	StalenessDays      int `long:"staleness-days" env:"STALENESS_DAYS" default:"30" description:"Items older than this are treated as pinned and skipped"`
	RetentionDays      int `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Days to keep delivery records before cleanup"`
	ContentMaxLength   int `long:"content-max-length" env:"CONTENT_MAX_LENGTH" default:"200" description:"Maximum content snippet length in notifications"`

	// Storage configuration
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./biliwatch.db" description:"Path to the sqlite delivery database"`
	CreatorsFile string `long:"creators-file" env:"CREATORS_FILE" default:"./creators.yaml" description:"YAML file with the creator watch-list"`

	// HTTP API configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Shanghai)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		WebhookURL:         raw.WebhookURL,
		WebhookSecret:      raw.WebhookSecret,
		CookieString:       raw.CookieString,
		UserAgent:          raw.UserAgent,
		MinRequestInterval: raw.MinRequestInterval,
		FetchLimit:         raw.FetchLimit,
		QuickCheckInterval: raw.QuickCheckInterval,
		FullCheckInterval:  raw.FullCheckInterval,
		StalenessDays:      raw.StalenessDays,
		RetentionDays:      raw.RetentionDays,
		ContentMaxLength:   raw.ContentMaxLength,
		DBPath:             raw.DBPath,
		CreatorsFile:       raw.CreatorsFile,
		Port:               raw.Port,
		APIAccessKey:       raw.APIAccessKey,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	if cfg.QuickCheckInterval < 1 {
		return fmt.Errorf("quick check interval must be at least 1 minute, got %d", cfg.QuickCheckInterval)
	}
	if cfg.FullCheckInterval < 1 {
		return fmt.Errorf("full check interval must be at least 1 minute, got %d", cfg.FullCheckInterval)
	}
	if cfg.StalenessDays < 1 {
		return fmt.Errorf("staleness window must be at least 1 day, got %d", cfg.StalenessDays)
	}
	if cfg.MinRequestInterval < 0 {
		return fmt.Errorf("minimum request interval cannot be negative, got %d", cfg.MinRequestInterval)
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
