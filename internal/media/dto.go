package media

// UploadResponse represents the response after a successful upload
type UploadResponse struct {
	MediaID int64  `json:"media_id"`
	Message string `json:"message"`
}

// MediaResponse represents one media item in a group feed
type MediaResponse struct {
	ID         int64  `json:"id"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	UploadedAt string `json:"uploaded_at"`
}

// ToResponse converts a Media model to a MediaResponse DTO
func (m *Media) ToResponse() *MediaResponse {
	return &MediaResponse{
		ID:         m.ID,
		FileName:   m.FileName,
		FileType:   m.FileType,
		UploadedAt: m.UploadedAt.Format("2006-01-02T15:04:05Z"),
	}
}
