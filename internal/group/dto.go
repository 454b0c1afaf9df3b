package group

import (
	"strings"

	"github.com/mkamel/groupshare/pkg/response"
)

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	MemberIDs   []int64 `json:"member_ids,omitempty"`
}

// Validate returns field-level errors for a malformed create request.
func (r *CreateGroupRequest) Validate() []response.FieldError {
	var fields []response.FieldError
	if strings.TrimSpace(r.Name) == "" {
		fields = append(fields, response.FieldError{Field: "name", Message: "Group name is required"})
	}
	for _, id := range r.MemberIDs {
		if id <= 0 {
			fields = append(fields, response.FieldError{Field: "member_ids", Message: "Member IDs must be positive"})
			break
		}
	}
	return fields
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	UserID    int64      `json:"user_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      MemberRole `json:"role"`
	JoinedAt  string     `json:"joined_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:    m.UserID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Role:      m.Role,
		JoinedAt:  m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}
