package constants

import "time"

const (
	AppName            = "habitflow"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitflow"
	DefaultConfigPath  = "~/.config/habitflow/habitflow.db"
	DefaultConfigFile  = "~/.config/habitflow/config.toml"
	Version            = "v0.3.0"

	// DateFormat is the ledger date key format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// ConnectionEnvVar overrides the keyring for remote backends
	ConnectionEnvVar = "HABITFLOW_DB_CONNECTION"

	// Storage keys shared by every user
	LoggedUserKey      = "loggedUser"
	RegisteredUsersKey = "registeredUsers"

	// Per-user data types, combined with the user email into user_<email>_<type>
	DataHabits          = "habits"
	DataGoals           = "goals"
	DataCompletedHabits = "completedHabits"
	UserKeyPrefix       = "user_"

	// Streaks never look further back than this many days
	StreakLookbackDays = 30

	// Stats window lengths in days
	DayWindow   = 1
	WeekWindow  = 7
	MonthWindow = 30

	// Weekly habits are due on Sunday
	WeeklyDueDay = time.Sunday

	// Goal periods offered at creation time
	GoalPeriodWeek    = 7
	GoalPeriodMonth   = 30
	GoalPeriodQuarter = 90

	MinPasswordLength = 6

	// Remote backend timeouts
	ConnectTimeout = 10 * time.Second
	OpTimeout      = 5 * time.Second

	// Redis keys are stored under this prefix so ListKeys can scan a shared instance
	RedisKeyPrefix = "habitflow:"

	// Export formats
	ExportYAML = "yaml"
	ExportJSON = "json"
)
