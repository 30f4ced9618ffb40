package cfg

type Cfg struct {
	// Notification configuration
	WebhookURL    string
	WebhookSecret string

	// Upstream configuration
	CookieString       string
	UserAgent          string
	MinRequestInterval int // seconds
	FetchLimit         int

	// Monitoring configuration
	QuickCheckInterval int // minutes
	FullCheckInterval  int // minutes
	StalenessDays      int
	RetentionDays      int
	ContentMaxLength   int

	// Storage configuration
	DBPath       string
	CreatorsFile string

	// HTTP API configuration
	Port         string
	APIAccessKey string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
