package group

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mkamel/groupshare/internal/database"
)

// Common errors
var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrNotMember      = errors.New("you are not a member of this group")
	ErrNotAdmin       = errors.New("only group admins can manage members")
	ErrAlreadyMember  = errors.New("user is already a member of this group")
	ErrMemberNotFound = errors.New("member not found in this group")
	ErrLastAdmin      = errors.New("cannot remove the last admin of the group")
	ErrGroupNotEmpty  = errors.New("cannot delete a group with other members in it")
	ErrNotSoleMember  = errors.New("you do not have permission to delete this group")
)

// Service handles group business logic. Every mutating operation runs as one
// serializable transaction: all steps commit together or none persist.
type Service struct {
	db   *sql.DB
	repo *Repository
}

// NewService creates a new group service
func NewService(repo *Repository) *Service {
	return &Service{db: repo.DB(), repo: repo}
}

// Create inserts the group, the creator's admin membership, and the invited
// members atomically. The creator is deduplicated out of MemberIDs so they
// appear exactly once, always as admin.
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	memberIDs := dedupeMemberIDs(req.MemberIDs, creatorID)

	var group *Group
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		created, err := s.repo.Insert(ctx, tx, req.Name, req.Description, creatorID)
		if err != nil {
			return err
		}

		if err := s.repo.InsertMember(ctx, tx, created.ID, creatorID, MemberRoleAdmin); err != nil {
			return err
		}

		if err := s.repo.InsertMembers(ctx, tx, created.ID, memberIDs, MemberRoleMember); err != nil {
			return err
		}

		group = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

// ListByUserID retrieves all groups the user belongs to
func (s *Service) ListByUserID(ctx context.Context, userID int64) ([]*Group, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// GetDetail retrieves a group with its full member list. The caller must
// hold a membership in the group.
func (s *Service) GetDetail(ctx context.Context, userID, groupID int64) (*Group, []*Member, error) {
	caller, err := s.repo.GetMember(ctx, s.db, groupID, userID)
	if err != nil {
		return nil, nil, err
	}
	if caller == nil {
		return nil, nil, ErrNotMember
	}

	group, err := s.repo.GetByID(ctx, s.db, groupID)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		// Membership without a group row means deletion ordering was
		// violated somewhere; report the group as gone.
		return nil, nil, ErrGroupNotFound
	}

	members, err := s.repo.GetMembers(ctx, s.db, groupID)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// AddMember adds a user to a group with role member. Only admins may add.
func (s *Service) AddMember(ctx context.Context, adminID, groupID, newUserID int64) error {
	admin, err := s.repo.GetMember(ctx, s.db, groupID, adminID)
	if err != nil {
		return err
	}
	if admin == nil || admin.Role != MemberRoleAdmin {
		return ErrNotAdmin
	}

	return s.repo.InsertMember(ctx, s.db, groupID, newUserID, MemberRoleMember)
}

// RemoveMember removes a user from a group. Only admins may remove, and an
// admin removing themselves must not be the group's last admin.
func (s *Service) RemoveMember(ctx context.Context, adminID, groupID, targetUserID int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		admin, err := s.repo.GetMember(ctx, tx, groupID, adminID)
		if err != nil {
			return err
		}
		if admin == nil || admin.Role != MemberRoleAdmin {
			return ErrNotAdmin
		}

		if adminID == targetUserID {
			counts, err := s.repo.CountMembers(ctx, tx, groupID)
			if err != nil {
				return err
			}
			if counts.Admins <= 1 {
				return ErrLastAdmin
			}
		}

		affected, err := s.repo.DeleteMember(ctx, tx, groupID, targetUserID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrMemberNotFound
		}

		return nil
	})
}

// Leave removes the caller's own membership. The sole admin of a group that
// still has other members cannot leave; a group's only member always can,
// which leaves the group row behind with zero members.
func (s *Service) Leave(ctx context.Context, userID, groupID int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		member, err := s.repo.GetMember(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		if member == nil {
			return ErrNotMember
		}

		counts, err := s.repo.CountMembers(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if member.Role == MemberRoleAdmin && counts.Admins == 1 && counts.Members > 1 {
			return ErrLastAdmin
		}

		if _, err := s.repo.DeleteMember(ctx, tx, groupID, userID); err != nil {
			return err
		}

		return nil
	})
}

// Delete removes a group along with its media and membership rows. Allowed
// only when the caller is the group's single remaining member.
func (s *Service) Delete(ctx context.Context, userID, groupID int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		memberIDs, err := s.repo.ListMemberUserIDs(ctx, tx, groupID)
		if err != nil {
			return err
		}

		if len(memberIDs) > 1 {
			return ErrGroupNotEmpty
		}
		if len(memberIDs) == 0 || memberIDs[0] != userID {
			return ErrNotSoleMember
		}

		// Media first, then memberships, then the group row, so a failure
		// partway through never leaves orphaned child rows after rollback.
		if err := s.repo.DeleteMedia(ctx, tx, groupID); err != nil {
			return err
		}
		if err := s.repo.DeleteMembers(ctx, tx, groupID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, groupID)
	})
}

// dedupeMemberIDs drops duplicates and the creator from the invite list
func dedupeMemberIDs(ids []int64, creatorID int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	var out []int64
	for _, id := range ids {
		if id == creatorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
