package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	// File paths
	DBPath      string
	SourcesPath string

	// Telegram credentials
	BotToken string
	ChatID   string

	// Live fixtures API
	LiveAPIKey  string
	LiveAPIHost string

	// Server settings
	ServerHost string
	ServerPort int
	APIKey     string

	// Cadence
	PollInterval     time.Duration
	LivePollInterval time.Duration
	FetchTimeout     time.Duration

	// Publication limits
	MaxPostsPerDay  int
	MaxPostsPerHour int
	WindowStart     string
	WindowEnd       string
	Timezone        string
	OffhoursScore   int
	SportCooldowns  map[string]int

	// Digest settings
	DigestTrigger  int
	DigestMaxItems int
	DigestScoreMin int
	DigestScoreMax int
	DigestWindow   time.Duration

	// Dedupe settings
	DedupeThreshold float64
	DedupeWindow    time.Duration
	DedupeLimit     int

	// Live event limits
	LiveMaxEvents int
	LiveCooldown  time.Duration

	// Article retention
	RetentionDays int

	// Editorial lists, overridable from the sources file
	TopTeams          []string
	TrackedLeagues    map[int]string
	OfficialDomains   []string
	SpecialistDomains []string

	// Log settings
	LogLevel zerolog.Level
}

// DefaultConfig returns a configuration built from hardcoded defaults with
// environment overrides applied.
func DefaultConfig() *Config {
	defaultLevel, _ := zerolog.ParseLevel(DefaultLogLevel)

	cooldowns := make(map[string]int, len(DefaultSportCooldowns))
	for sport, minutes := range DefaultSportCooldowns {
		cooldowns[sport] = minutes
	}

	return &Config{
		DBPath:      GetEnvString("GOALWIRE_DB_PATH", DefaultDBPath),
		SourcesPath: GetEnvString("GOALWIRE_SOURCES_PATH", DefaultSourcesPath),

		BotToken: GetEnvString("BOT_TOKEN", ""),
		ChatID:   GetEnvString("CHANNEL_CHAT_ID", ""),

		LiveAPIKey:  GetEnvString("LIVE_API_KEY", ""),
		LiveAPIHost: GetEnvString("LIVE_API_HOST", "free-api-live-football-data.p.rapidapi.com"),

		ServerHost: GetEnvString("GOALWIRE_SERVER_HOST", DefaultServerHost),
		ServerPort: GetEnvInt("GOALWIRE_SERVER_PORT", DefaultServerPort),
		APIKey:     GetEnvString("GOALWIRE_API_KEY", ""),

		PollInterval:     GetEnvDuration("POLL_INTERVAL_SECONDS", DefaultPollInterval*time.Second),
		LivePollInterval: GetEnvDuration("LIVE_POLL_SECONDS", DefaultLivePollInterval*time.Second),
		FetchTimeout:     DefaultFetchTimeout * time.Second,

		MaxPostsPerDay:  GetEnvInt("MAX_POSTS_PER_DAY", DefaultMaxPostsPerDay),
		MaxPostsPerHour: GetEnvInt("MAX_POSTS_PER_HOUR", DefaultMaxPostsPerHour),
		WindowStart:     GetEnvString("ACTIVE_WINDOW_START", DefaultWindowStart),
		WindowEnd:       GetEnvString("ACTIVE_WINDOW_END", DefaultWindowEnd),
		Timezone:        GetEnvString("GOALWIRE_TIMEZONE", DefaultTimezone),
		OffhoursScore:   GetEnvInt("OFFHOURS_MIN_SCORE", DefaultOffhoursScore),
		SportCooldowns:  cooldowns,

		DigestTrigger:  GetEnvInt("DIGEST_TRIGGER", DefaultDigestTrigger),
		DigestMaxItems: GetEnvInt("DIGEST_MAX_ITEMS", DefaultDigestMaxItems),
		DigestScoreMin: DefaultDigestScoreMin,
		DigestScoreMax: DefaultDigestScoreMax,
		DigestWindow:   DefaultDigestWindow * time.Minute,

		DedupeThreshold: GetEnvFloat("DEDUPE_THRESHOLD", DefaultDedupeThreshold),
		DedupeWindow:    DefaultDedupeWindow * time.Hour,
		DedupeLimit:     DefaultDedupeLimit,

		LiveMaxEvents: GetEnvInt("LIVE_MAX_EVENTS", DefaultLiveMaxEvents),
		LiveCooldown:  GetEnvDuration("LIVE_EVENT_COOLDOWN", DefaultLiveCooldown*time.Minute),

		RetentionDays: GetEnvInt("GOALWIRE_RETENTION_DAYS", DefaultRetentionDays),

		TopTeams:          defaultTopTeams(),
		TrackedLeagues:    defaultTrackedLeagues(),
		OfficialDomains:   defaultOfficialDomains(),
		SpecialistDomains: defaultSpecialistDomains(),

		LogLevel: GetEnvLogLevel("GOALWIRE_LOG_LEVEL", defaultLevel),
	}
}

// ListenAddr returns the formatted listen address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Location resolves the configured timezone, falling back to UTC when the
// name cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CooldownFor returns the per-sport posting cooldown.
func (c *Config) CooldownFor(sport string) time.Duration {
	if minutes, ok := c.SportCooldowns[sport]; ok {
		return time.Duration(minutes) * time.Minute
	}
	return SportCooldownFallback * time.Minute
}
