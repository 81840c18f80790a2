package analytics

import "time"

// Action is the kind of user activity a log entry records.
type Action string

const (
	ActionView     Action = "view"
	ActionLike     Action = "like"
	ActionBookmark Action = "bookmark"
	ActionSearch   Action = "search"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionShare    Action = "share"
	ActionLogin    Action = "login"
	ActionSignup   Action = "signup"
)

// InteractionActions are the actions that count toward trending and interest.
var InteractionActions = []Action{ActionView, ActionLike, ActionBookmark}

// Log is an append-only activity record.
type Log struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Action    Action         `json:"actionType"`
	CardID    string         `json:"cardId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"timestamp"`
}

// CardCount is the number of matching log entries for one card.
type CardCount struct {
	CardID string
	Count  int64
}

func actionStrings(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}
