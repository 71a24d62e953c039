package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationFriendRequest = "friend_request"
	NotificationFriendAccept  = "friend_accept"
	NotificationFollow        = "follow"
	NotificationNewPost       = "new_post"
	NotificationLike          = "like"
	NotificationComment       = "comment"
	NotificationGroupInvite   = "group_invite"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID        string            `json:"id" gorm:"primaryKey;size:40"`
	UserID    string            `json:"userId" gorm:"size:40;index"` // recipient
	ActorID   string            `json:"actorId" gorm:"size:40"`
	Type      string            `json:"type" gorm:"size:30;index"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      datatypes.JSONMap `json:"data"`
	IsRead    bool              `json:"isRead" gorm:"default:false;index"`
	CreatedAt time.Time         `json:"createdAt" gorm:"index"`
}
