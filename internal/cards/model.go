package cards

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityShared  Visibility = "shared"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityShared:
		return true
	}
	return false
}

// Counter names a denormalized interaction counter on a card.
type Counter string

const (
	CounterLikes     Counter = "like"
	CounterBookmarks Counter = "bookmark"
)

type Rating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// Card is a standalone shareable unit of knowledge.
type Card struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	AuthorID      string     `json:"authorId"`
	Tags          []string   `json:"tags"`
	Category      string     `json:"category"`
	Visibility    Visibility `json:"visibility"`
	ViewCount     int64      `json:"viewCount"`
	LikeCount     int64      `json:"likeCount"`
	BookmarkCount int64      `json:"bookmarkCount"`
	Rating        Rating     `json:"rating"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// VisibleTo applies the read gate: public cards are open to anyone, shared
// cards to any signed-in user and private cards to their author only.
func (c Card) VisibleTo(viewerID string) bool {
	switch c.Visibility {
	case VisibilityPublic:
		return true
	case VisibilityShared:
		return viewerID != ""
	default:
		return viewerID != "" && viewerID == c.AuthorID
	}
}

// Filter narrows card listings. Zero values mean no constraint.
type Filter struct {
	Visibility Visibility
	AuthorID   string
	Category   string
	Tag        string
	Query      string
	Limit      int
	Offset     int
}

// Counters is a snapshot of a card's interaction counters.
type Counters struct {
	CardID    string
	Likes     int64
	Bookmarks int64
}

func (c Card) clone() Card {
	c.Tags = append([]string(nil), c.Tags...)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}
