// Package config loads the bot configuration from the environment. A .env
// file in the working directory is read first when present; variables
// already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata" // BOT_TIMEZONE must resolve on minimal images

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	// Discord
	DiscordToken   string `env:"DISCORD_TOKEN"`
	AppID          string `env:"DISCORD_APP_ID"`
	GuildID        string `env:"DISCORD_GUILD_ID"`
	RecruitForumID string `env:"RECRUIT_FORUM_ID"`
	ChatChannelID  string `env:"CHAT_CHANNEL_ID"`
	RoleID         string `env:"ROLE_ID"`
	TargetUserID   string `env:"TARGET_USER_ID"`

	// LLM
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	// Storage
	DatabaseURL   string `env:"DATABASE_URL"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"data/lucybot.db"`
	KnowledgePath string `env:"KNOWLEDGE_PATH" envDefault:"data/knowledge.json"`

	// Admin HTTP API; empty disables it.
	Port string `env:"PORT" envDefault:"8080"`

	// Behaviour
	Timezone         string        `env:"BOT_TIMEZONE" envDefault:"Asia/Tokyo"`
	MonitorGames     []string      `env:"MONITOR_GAMES" envSeparator:"," envDefault:"FINAL FANTASY,Monster Hunter,Steam"`
	MonitorStartHour int           `env:"MONITOR_START_HOUR" envDefault:"10"`
	MonitorEndHour   int           `env:"MONITOR_END_HOUR" envDefault:"18"`
	HistoryExchanges int           `env:"HISTORY_EXCHANGES" envDefault:"10"`
	WizardTTL        time.Duration `env:"WIZARD_TTL" envDefault:"15m"`
	SearchRegion     string        `env:"SEARCH_REGION" envDefault:"jp-jp"`
	SearchMaxResults int           `env:"SEARCH_MAX_RESULTS" envDefault:"3"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	location *time.Location
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse parses the environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("BOT_TIMEZONE: %w", err)
	}
	c.location = loc
	if c.MonitorStartHour < 0 || c.MonitorEndHour > 24 || c.MonitorStartHour >= c.MonitorEndHour {
		return fmt.Errorf("monitor window %d-%d is invalid", c.MonitorStartHour, c.MonitorEndHour)
	}
	if c.HistoryExchanges <= 0 {
		return fmt.Errorf("HISTORY_EXCHANGES must be positive")
	}
	if c.WizardTTL <= 0 {
		return fmt.Errorf("WIZARD_TTL must be positive")
	}
	return nil
}

// Location is the parsed BOT_TIMEZONE.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// RecruitmentEnabled reports whether panels have a forum to live in.
func (c Config) RecruitmentEnabled() bool { return c.RecruitForumID != "" }

// AnnounceEnabled reports whether new recruitments are announced.
func (c Config) AnnounceEnabled() bool { return c.ChatChannelID != "" }

// MonitorEnabled reports whether presence nagging is configured.
func (c Config) MonitorEnabled() bool { return c.TargetUserID != "" && c.ChatChannelID != "" }

// LLMEnabled reports whether a Gemini key is present.
func (c Config) LLMEnabled() bool { return c.GeminiAPIKey != "" }

// UsePostgres reports whether DATABASE_URL selects PostgreSQL over SQLite.
func (c Config) UsePostgres() bool { return c.DatabaseURL != "" }

// Missing lists the features disabled by absent settings, for the startup
// log.
func (c Config) Missing() []string {
	var out []string
	if !c.LLMEnabled() {
		out = append(out, "GEMINI_API_KEY (chat replies)")
	}
	if !c.RecruitmentEnabled() {
		out = append(out, "RECRUIT_FORUM_ID (recruitment panels)")
	}
	if !c.AnnounceEnabled() {
		out = append(out, "CHAT_CHANNEL_ID (announcements, presence monitor)")
	}
	if c.RoleID == "" {
		out = append(out, "ROLE_ID (recruitment role mention)")
	}
	if c.TargetUserID == "" {
		out = append(out, "TARGET_USER_ID (presence monitor)")
	}
	return out
}
