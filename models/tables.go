package models

// Table names shared by the entity codecs and the repositories.
const (
	TableUsers          = "users"
	TableTasks          = "tasks"
	TableHabits         = "habits"
	TableFinanceEntries = "finance_entries"
	TableXPEntries      = "xp_entries"
	TableAchievements   = "achievements"
	TableAppState       = "app_state"
	TableSchemaVersion  = "schema_version"
	TableAICache        = "ai_cache"
)
