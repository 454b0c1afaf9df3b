package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/mkamel/groupshare/internal/database"
)

// Repository handles group data persistence. Mutating methods take a
// database.Querier so the service can run them inside one transaction.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying pool for transaction scoping by the service.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Insert creates a new group row
func (r *Repository) Insert(ctx context.Context, q database.Querier, name string, description *string, createdBy int64) (*Group, error) {
	query := `
		INSERT INTO groups (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, created_by, created_at
	`

	group := &Group{}
	err := q.QueryRowContext(ctx, query, name, description, createdBy).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.CreatedBy,
		&group.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert group: %w", err)
	}

	return group, nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, q database.Querier, id int64) (*Group, error) {
	query := `
		SELECT id, name, description, created_by, created_at
		FROM groups
		WHERE id = $1
	`

	group := &Group{}
	err := q.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.CreatedBy,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// ListByUserID retrieves all groups the user holds a membership in
func (r *Repository) ListByUserID(ctx context.Context, userID int64) ([]*Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.created_by, g.created_at
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group := &Group{}
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.CreatedBy,
			&group.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// InsertMember adds a single membership row. A duplicate (group, user) pair
// surfaces as ErrAlreadyMember.
func (r *Repository) InsertMember(ctx context.Context, q database.Querier, groupID, userID int64, role MemberRole) error {
	query := `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
	`

	if _, err := q.ExecContext(ctx, query, groupID, userID, role); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}

	return nil
}

// InsertMembers adds membership rows for every user ID in a single
// multi-row insert.
func (r *Repository) InsertMembers(ctx context.Context, q database.Querier, groupID int64, userIDs []int64, role MemberRole) error {
	if len(userIDs) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(userIDs))
	args := make([]interface{}, 0, len(userIDs)*3)
	for i, userID := range userIDs {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3))
		args = append(args, groupID, userID, role)
	}

	query := fmt.Sprintf(
		"INSERT INTO group_members (group_id, user_id, role) VALUES %s",
		strings.Join(placeholders, ", "),
	)

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("failed to insert members: %w", err)
	}

	return nil
}

// GetMember retrieves a membership row, nil when the user is not a member
func (r *Repository) GetMember(ctx context.Context, q database.Querier, groupID, userID int64) (*Member, error) {
	query := `
		SELECT id, group_id, user_id, role, joined_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`

	member := &Member{}
	err := q.QueryRowContext(ctx, query, groupID, userID).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// GetMembers retrieves all members of a group with their user names
func (r *Repository) GetMembers(ctx context.Context, q database.Querier, groupID int64) ([]*Member, error) {
	query := `
		SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.joined_at, u.first_name, u.last_name
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at
	`

	rows, err := q.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(
			&member.ID,
			&member.GroupID,
			&member.UserID,
			&member.Role,
			&member.JoinedAt,
			&member.FirstName,
			&member.LastName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// CountMembers returns the total member and admin counts for a group
func (r *Repository) CountMembers(ctx context.Context, q database.Querier, groupID int64) (*Counts, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN role = 'admin' THEN 1 ELSE 0 END), 0)
		FROM group_members
		WHERE group_id = $1
	`

	counts := &Counts{}
	if err := q.QueryRowContext(ctx, query, groupID).Scan(&counts.Members, &counts.Admins); err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	return counts, nil
}

// ListMemberUserIDs returns the user IDs holding a membership in the group
func (r *Repository) ListMemberUserIDs(ctx context.Context, q database.Querier, groupID int64) ([]int64, error) {
	query := `SELECT user_id FROM group_members WHERE group_id = $1`

	rows, err := q.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member user ids: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate member user ids: %w", err)
	}

	return userIDs, nil
}

// DeleteMember removes a membership row and reports how many rows matched
func (r *Repository) DeleteMember(ctx context.Context, q database.Querier, groupID, userID int64) (int64, error) {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`

	result, err := q.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// DeleteMembers removes every membership row of a group
func (r *Repository) DeleteMembers(ctx context.Context, q database.Querier, groupID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("failed to delete group members: %w", err)
	}
	return nil
}

// DeleteMedia removes every media row belonging to a group. Runs first in the
// group-deletion transaction so no media row can outlive its group.
func (r *Repository) DeleteMedia(ctx context.Context, q database.Querier, groupID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM media WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("failed to delete group media: %w", err)
	}
	return nil
}

// Delete removes the group row itself
func (r *Repository) Delete(ctx context.Context, q database.Querier, groupID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
