package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	GroupRoleOwner  = "owner"
	GroupRoleMember = "member"
)

type GroupSettings struct {
	AllowMemberInvites bool `json:"allowMemberInvites"`
}

// Group owns its member and invite rows. The owner is always a member and
// invites never name a member.
type Group struct {
	ID          string                            `json:"id" gorm:"primaryKey;size:40"`
	Name        string                            `json:"name" gorm:"size:100"`
	Description string                            `json:"description"`
	OwnerID     string                            `json:"ownerId" gorm:"size:40;index"`
	Settings    datatypes.JSONType[GroupSettings] `json:"settings"`
	Members     []GroupMember                     `json:"members,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	Invites     []GroupInvite                     `json:"invites,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time                         `json:"createdAt"`
	UpdatedAt   time.Time                         `json:"updatedAt"`
}

type GroupMember struct {
	GroupID  string    `json:"groupId" gorm:"primaryKey;size:40"`
	UserID   string    `json:"userId" gorm:"primaryKey;size:40;index"`
	Role     string    `json:"role" gorm:"size:20"`
	JoinedAt time.Time `json:"joinedAt"`
}

type GroupInvite struct {
	GroupID   string    `json:"groupId" gorm:"primaryKey;size:40"`
	UserID    string    `json:"userId" gorm:"primaryKey;size:40;index"`
	InvitedBy string    `json:"invitedBy" gorm:"size:40"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsMember reports whether userID is in the member list.
func (g *Group) IsMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// IsInvited reports whether userID holds an open invite.
func (g *Group) IsInvited(userID string) bool {
	for _, inv := range g.Invites {
		if inv.UserID == userID {
			return true
		}
	}
	return false
}

type CreateGroupRequest struct {
	UserID             string `json:"userId"`
	Name               string `json:"name" validate:"required,min=1,max=100"`
	Description        string `json:"description" validate:"max=500"`
	AllowMemberInvites bool   `json:"allowMemberInvites"`
}

type GroupInviteRequest struct {
	UserID    string `json:"userId"`
	InviteeID string `json:"inviteeId" validate:"required"`
}

type TransferOwnershipRequest struct {
	UserID     string `json:"userId"`
	NewOwnerID string `json:"newOwnerId" validate:"required"`
}
