package config

// Constants defining default values for application configuration
const (
	DefaultDBPath      = "./goalwire.db"
	DefaultSourcesPath = "./sources.yaml"

	DefaultServerPort = 8080
	DefaultServerHost = "" // Empty string means all interfaces

	DefaultPollInterval     = 300 // Seconds between news cycles
	DefaultLivePollInterval = 90  // Seconds between live cycles
	DefaultFetchTimeout     = 20  // Seconds per feed request

	DefaultMaxPostsPerDay  = 24
	DefaultMaxPostsPerHour = 3
	DefaultWindowStart     = "08:00"
	DefaultWindowEnd       = "23:30"
	DefaultTimezone        = "Europe/Madrid"
	DefaultOffhoursScore   = 85 // Minimum score to post outside the window

	DefaultDigestTrigger  = 4  // More than this many mid-score items starts a digest
	DefaultDigestMaxItems = 5
	DefaultDigestScoreMin = 55
	DefaultDigestScoreMax = 75
	DefaultDigestWindow   = 20 // Minutes of lookback for digest candidates

	DefaultDedupeThreshold = 0.88
	DefaultDedupeWindow    = 6 // Hours of history for fuzzy matching
	DefaultDedupeLimit     = 500

	DefaultLiveMaxEvents = 6 // Per match, finals exempt
	DefaultLiveCooldown  = 8 // Minutes between events of one match

	DefaultRetentionDays = 7 // Days to keep articles before purging

	DefaultLogLevel = "info"
)

// DefaultSportCooldowns is minutes between posts of the same sport.
var DefaultSportCooldowns = map[string]int{
	"football_eu": 15,
	"nba":         20,
	"tennis":      30,
}

// SportCooldownFallback applies to sports without an explicit entry.
const SportCooldownFallback = 15
