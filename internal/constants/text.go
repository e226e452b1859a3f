package constants

// Empty-state copy shared by the CLI and the TUI.
const (
	EmptyActivitiesTitle = "No Activities Yet"
	EmptyActivitiesText  = "Start tracking your time by adding your first activity. Every minute counts!"
	EmptyAnalyticsTitle  = "No Analytics Data"
	EmptyAnalyticsText   = "Track some activities first to see insights about how you spend your time."
)
