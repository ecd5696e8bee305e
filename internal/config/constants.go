package config

const (
	// DefaultDatabasePath is the default path for the club database.
	DefaultDatabasePath = "./bookclub.db"

	// DefaultMaintenanceSchedule runs maintenance nightly at 03:30.
	DefaultMaintenanceSchedule = "30 3 * * *"
)
