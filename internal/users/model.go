package users

import "time"

// User is an account that owns workspaces and cards.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PasswordHash   string    `json:"-"`
	PictureURL     string    `json:"pictureUrl,omitempty"`
	FavoriteTopics []string  `json:"favoriteTopics"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
