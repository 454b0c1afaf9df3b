package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository handles media metadata persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new media repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// HasMembership reports whether the user holds a membership in the group
func (r *Repository) HasMembership(ctx context.Context, groupID, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}
	return exists, nil
}

// Insert records the metadata of a stored file
func (r *Repository) Insert(ctx context.Context, m *Media) (*Media, error) {
	query := `
		INSERT INTO media (group_id, user_id, file_name, file_path, file_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uploaded_at
	`

	err := r.db.QueryRowContext(ctx, query, m.GroupID, m.UserID, m.FileName, m.FilePath, m.FileType).Scan(
		&m.ID,
		&m.UploadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert media: %w", err)
	}

	return m, nil
}

// ListByGroup retrieves all media metadata for a group
func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*Media, error) {
	query := `
		SELECT id, group_id, user_id, file_name, file_path, file_type, uploaded_at
		FROM media
		WHERE group_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	var items []*Media
	for rows.Next() {
		m := &Media{}
		if err := rows.Scan(
			&m.ID,
			&m.GroupID,
			&m.UserID,
			&m.FileName,
			&m.FilePath,
			&m.FileType,
			&m.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate media: %w", err)
	}

	return items, nil
}

// GetForDownload retrieves a media item only when the user is a member of
// the owning group; a single join covers both lookup and authorization.
func (r *Repository) GetForDownload(ctx context.Context, mediaID, userID int64) (*Media, error) {
	query := `
		SELECT m.id, m.group_id, m.user_id, m.file_name, m.file_path, m.file_type, m.uploaded_at
		FROM media m
		JOIN group_members gm ON m.group_id = gm.group_id
		WHERE m.id = $1 AND gm.user_id = $2
	`

	m := &Media{}
	err := r.db.QueryRowContext(ctx, query, mediaID, userID).Scan(
		&m.ID,
		&m.GroupID,
		&m.UserID,
		&m.FileName,
		&m.FilePath,
		&m.FileType,
		&m.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get media for download: %w", err)
	}

	return m, nil
}
