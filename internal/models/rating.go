package models

const (
	MinScore = 1
	MaxScore = 5
)

// Rating is one participant's review of another. There is no synthetic
// ID: a received rating is matched by (timestamp, reviewer), a given
// one by (timestamp, driver).
type Rating struct {
	Driver     Identity `json:"driver"`
	DriverName string   `json:"driverName,omitempty"`
	Reviewer   Identity `json:"reviewer,omitempty"`
	Score      int      `json:"rating"`
	Comment    string   `json:"comment,omitempty"`
	Timestamp  int64    `json:"timestamp"`
}

// ValidScore reports whether s lies in the accepted 1..5 range.
func ValidScore(s int) bool {
	return s >= MinScore && s <= MaxScore
}

// ParticipantMeta is opportunistically cached profile data for a
// participant. Never authoritative, may be stale or partial.
type ParticipantMeta struct {
	Class     string `json:"class,omitempty"`
	Faction   string `json:"faction,omitempty"`
	Race      string `json:"race,omitempty"`
	Level     int    `json:"level,omitempty"`
	UpdatedAt int64  `json:"updatedAt"`
}
