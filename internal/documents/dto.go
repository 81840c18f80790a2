package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID               string    `json:"id"`
	WorkspaceID      string    `json:"workspaceId"`
	AuthorID         string    `json:"authorId"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	FileURL          string    `json:"fileUrl"`
	FileName         string    `json:"fileName"`
	FileType         string    `json:"fileType"`
	FileSize         int64     `json:"fileSize"`
	HasExtractedText bool      `json:"hasExtractedText"`
	ExtractedText    string    `json:"extractedText,omitempty"`
	Summary          *Summary  `json:"summary,omitempty"`
	Tags             []string  `json:"tags"`
	ViewCount        int64     `json:"viewCount"`
	DownloadCount    int64     `json:"downloadCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toResponse(doc Document, withText bool) DocumentResponse {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	resp := DocumentResponse{
		ID:               doc.ID,
		WorkspaceID:      doc.WorkspaceID,
		AuthorID:         doc.AuthorID,
		Title:            doc.Title,
		Description:      doc.Description,
		FileURL:          doc.FileURL,
		FileName:         doc.FileName,
		FileType:         doc.FileType,
		FileSize:         doc.FileSize,
		HasExtractedText: doc.ExtractedText != "",
		Summary:          doc.Summary,
		Tags:             tags,
		ViewCount:        doc.ViewCount,
		DownloadCount:    doc.DownloadCount,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	if withText {
		resp.ExtractedText = doc.ExtractedText
	}
	return resp
}
