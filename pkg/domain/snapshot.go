package domain

// SessionSnapshot is a serializable capture of a navigation session's
// runtime state. Stores persist snapshots, never live sessions; rebuilding
// a session from a snapshot re-fetches the current step so a session never
// resumes onto stale content.
type SessionSnapshot struct {
	// CurrentStepID is the id of the step being displayed; empty when the
	// session is inactive.
	CurrentStepID string `json:"current_step_id"`

	// History is the ordered list of visited step ids. History[0] is the
	// entry step of the active session. The last entry matches
	// CurrentStepID except after a title-search jump, which replaces the
	// current step without extending history.
	History []string `json:"history"`

	// Config is the frozen attendance selection used to start the session.
	Config AttendanceConfig `json:"config"`

	// Active is true between session start and explicit end or reset.
	Active bool `json:"active"`

	// SearchQuery is the in-flight free-text search term, if any.
	SearchQuery string `json:"search_query,omitempty"`
}

// NewSnapshot creates an active snapshot positioned at the entry step.
func NewSnapshot(cfg AttendanceConfig, entryStepID string) *SessionSnapshot {
	return &SessionSnapshot{
		CurrentStepID: entryStepID,
		History:       []string{entryStepID},
		Config:        cfg,
		Active:        true,
	}
}
