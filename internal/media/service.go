package media

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/mkamel/groupshare/pkg/logger"
)

// Common errors
var (
	ErrNotMember  = errors.New("you are not a member of this group")
	ErrNotAllowed = errors.New("you do not have permission to download this file")
)

// Service handles media business logic
type Service struct {
	repo  *Repository
	store *DiskStore
}

// NewService creates a new media service
func NewService(repo *Repository, store *DiskStore) *Service {
	return &Service{repo: repo, store: store}
}

// Upload stores the file bytes, then records the metadata. The bytes hit
// disk before the row exists; a failed insert removes the stored file again.
func (s *Service) Upload(ctx context.Context, userID, groupID int64, src io.Reader, fileName, fileType string) (*Media, error) {
	isMember, err := s.repo.HasMembership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotMember
	}

	path, err := s.store.Save(src, fileName)
	if err != nil {
		return nil, err
	}

	m := &Media{
		GroupID:  groupID,
		UserID:   userID,
		FileName: fileName,
		FilePath: path,
		FileType: fileType,
	}
	if _, err := s.repo.Insert(ctx, m); err != nil {
		if rmErr := s.store.Remove(path); rmErr != nil {
			logger.L.Warn("failed to remove orphaned upload",
				zap.String("path", path),
				zap.Error(rmErr))
		}
		return nil, err
	}

	return m, nil
}

// ListByGroup retrieves the media feed of a group for one of its members
func (s *Service) ListByGroup(ctx context.Context, userID, groupID int64) ([]*Media, error) {
	isMember, err := s.repo.HasMembership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotMember
	}

	return s.repo.ListByGroup(ctx, groupID)
}

// GetForDownload retrieves a media item the user is allowed to download
func (s *Service) GetForDownload(ctx context.Context, userID, mediaID int64) (*Media, error) {
	m, err := s.repo.GetForDownload(ctx, mediaID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotAllowed
	}
	return m, nil
}
