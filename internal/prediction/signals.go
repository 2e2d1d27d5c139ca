package prediction

// FileSignals captures the editor/IDE-observable state of the active
// file, used to bias prediction toward memories relevant to what the
// agent is currently looking at.
type FileSignals struct {
	ActiveFile *string  `json:"active_file,omitempty"`
	Imports    []string `json:"imports"`
	Symbols    []string `json:"symbols"`
	Directory  *string  `json:"directory,omitempty"`
}

// BehavioralSignals captures recent agent activity.
type BehavioralSignals struct {
	RecentQueries       []string `json:"recent_queries"`
	RecentIntents       []string `json:"recent_intents"`
	FrequentMemoryIDs   []string `json:"frequent_memory_ids"`
}

// GitSignals captures the state of the working tree's VCS, when
// available.
type GitSignals struct {
	BranchName           *string  `json:"branch_name,omitempty"`
	ModifiedFiles        []string `json:"modified_files"`
	RecentCommitMessages []string `json:"recent_commit_messages"`
}

// TemporalSignals captures session-clock signals.
type TemporalSignals struct {
	SessionDurationSecs int64  `json:"session_duration_secs"`
	HourOfDay           int    `json:"hour_of_day"`
	DayOfWeek           int    `json:"day_of_week"`
	TimeBucket          string `json:"time_bucket"`
}

// TimeBucket classifies an hour-of-day (0-23) into one of four coarse
// buckets, used to bias recall toward memories associated with similar
// times of day.
func TimeBucket(hourOfDay int) string {
	switch {
	case hourOfDay >= 5 && hourOfDay < 12:
		return "morning"
	case hourOfDay >= 12 && hourOfDay < 17:
		return "afternoon"
	case hourOfDay >= 17 && hourOfDay < 21:
		return "evening"
	default:
		return "night"
	}
}

// Signals bundles all four signal groups into the single input the
// prediction engine fingerprints and caches against.
type Signals struct {
	File       FileSignals       `json:"file"`
	Behavioral BehavioralSignals `json:"behavioral"`
	Git        GitSignals        `json:"git"`
	Temporal   TemporalSignals   `json:"temporal"`
}
