package domain

import "time"

// User represents a learner
type User struct {
	UserID    string
	Settings  Settings
	CreatedAt time.Time
}

// Settings holds the learner's daily caps and new-item frontier
type Settings struct {
	SessionLimit    int `json:"sessionLimit"`
	NewDailyCap     int `json:"newDailyCap"`
	DailyReviewCap  int `json:"dailyReviewCap"`
	LastLearnedRank int `json:"lastLearnedRank"`
}

// DefaultPhraseNewDailyCap is the phrase session size and new-item cap
// when the caller passes none
const DefaultPhraseNewDailyCap = 4

// DefaultSettings returns the settings every new learner starts with
func DefaultSettings() Settings {
	return Settings{
		SessionLimit:    30,
		NewDailyCap:     30,
		DailyReviewCap:  300,
		LastLearnedRank: 0,
	}
}

// NormalizeSettings replaces out-of-range values with defaults
func NormalizeSettings(s Settings) Settings {
	def := DefaultSettings()
	if s.SessionLimit <= 0 {
		s.SessionLimit = def.SessionLimit
	}
	if s.NewDailyCap < 0 {
		s.NewDailyCap = def.NewDailyCap
	}
	if s.DailyReviewCap <= 0 {
		s.DailyReviewCap = def.DailyReviewCap
	}
	if s.LastLearnedRank < 0 {
		s.LastLearnedRank = def.LastLearnedRank
	}
	return s
}

// UserState represents user's current interaction state in the bot
type UserState string

const (
	StateIdle     UserState = "idle"
	StateQuestion UserState = "question"
	StateAnswered UserState = "answered"
)

// StateData holds the card the user is currently looking at
type StateData struct {
	State  UserState
	Kind   ItemKind
	ItemID string
}
