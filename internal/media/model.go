package media

import "time"

// Media represents an uploaded file scoped to a group
type Media struct {
	ID         int64     `json:"id"`
	GroupID    int64     `json:"group_id"`
	UserID     int64     `json:"user_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"-"`
	FileType   string    `json:"file_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}
