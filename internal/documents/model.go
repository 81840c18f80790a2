package documents

import "time"

// Summary is the persisted result of summarizing a document.
type Summary struct {
	Content   string    `json:"content"`
	KeyPoints []string  `json:"keyPoints"`
	Topics    []string  `json:"topics"`
	Sentiment string    `json:"sentiment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is a file uploaded into a workspace. ExtractedText caches the
// text mined from the file. ExtractedAt is set once an extraction attempt has
// finished, so empty text with a non-nil ExtractedAt means the file holds no
// readable text and is not parsed again.
type Document struct {
	ID            string
	WorkspaceID   string
	AuthorID      string
	Title         string
	Description   string
	FileURL       string
	FileName      string
	FileType      string
	FileSize      int64
	ExtractedText string
	ExtractedAt   *time.Time
	Summary       *Summary
	Tags          []string
	ViewCount     int64
	DownloadCount int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
