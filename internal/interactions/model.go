package interactions

import (
	"time"

	"workspace-backend/internal/cards"
)

// Type distinguishes a like from a bookmark.
type Type string

const (
	TypeLike     Type = "like"
	TypeBookmark Type = "bookmark"
)

func (t Type) counter() cards.Counter {
	if t == TypeBookmark {
		return cards.CounterBookmarks
	}
	return cards.CounterLikes
}

// Interaction records that a user liked or bookmarked a card.
type Interaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CardID    string    `json:"cardId"`
	Type      Type      `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Status is the caller's interaction state for one card.
type Status struct {
	Liked      bool `json:"liked"`
	Bookmarked bool `json:"bookmarked"`
}

// Tally is the true row count per type for a card.
type Tally struct {
	Likes     int64
	Bookmarks int64
}

// Actor identifies who performed an interaction.
type Actor struct {
	ID   string
	Name string
}
