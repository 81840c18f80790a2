package notifications

import "time"

// Type classifies what triggered a notification.
type Type string

const (
	TypeLike     Type = "like"
	TypeBookmark Type = "bookmark"
	TypeShare    Type = "share"
	TypeSystem   Type = "system"
)

// Notification is a message addressed to one user.
type Notification struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Message       string     `json:"message"`
	Type          Type       `json:"type"`
	RelatedCardID string     `json:"relatedCardId,omitempty"`
	RelatedUserID string     `json:"relatedUserId,omitempty"`
	Read          bool       `json:"read"`
	ReadAt        *time.Time `json:"readAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
