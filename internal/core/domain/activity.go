package domain

import "time"

// ActivityKind names the stats mutation an Activity records.
type ActivityKind string

const (
	ActivityModuleCompleted ActivityKind = "module_completed"
	ActivityStatsUpdated    ActivityKind = "stats_updated"
)

// Activity is an audit entry for a change to a user's stats.
type Activity struct {
	ID                string       `json:"id,omitempty"`
	UserID            string       `json:"userId"`
	ActorID           string       `json:"actorId"`
	Kind              ActivityKind `json:"kind"`
	ModuleSlug        string       `json:"moduleSlug,omitempty"`
	PointsDelta       int          `json:"pointsDelta"`
	GreenCreditsDelta int          `json:"greenCreditsDelta"`
	At                time.Time    `json:"at"`
}
