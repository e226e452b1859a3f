package constants

const (
	AppName            = "timeflow"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/timeflow/timeflow.db"
	Version            = "v0.1.0"

	// DateFormat is the day-key format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Display formats for day labels
	ShortDayFormat = "Mon"
	MonthDayFormat = "Jan 2"
	LongDayFormat  = "Monday, January 2"

	// Environment variables
	EnvConfig       = "TIMEFLOW_CONFIG"
	EnvDebug        = "TIMEFLOW_DEBUG"
	EnvNotify       = "TIMEFLOW_NOTIFY"
	EnvDBConnection = "TIMEFLOW_DB_CONNECTION"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "timeflow-"

	// Lock and log files live next to the store
	LockfileName = "timeflow.lock"
	LogDirName   = "logs"
	LogFileName  = "timeflow.log"
)
