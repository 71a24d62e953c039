package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account. Relationship sets live in their own tables; the
// counts here are maintained by the repositories in the same transaction as
// the edge they summarise.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;size:40"`
	FullName       string    `json:"fullName" gorm:"size:100"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255"`
	Password       string    `json:"-"`
	FirebaseUID    *string   `json:"-" gorm:"uniqueIndex;size:128"`
	PushToken      string    `json:"-" gorm:"size:255"`
	FollowersCount int64     `json:"followersCount" gorm:"not null;default:0"`
	FollowingCount int64     `json:"followingCount" gorm:"not null;default:0"`
	FriendsCount   int64     `json:"friendsCount" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UserCompact is the author/actor view embedded in other payloads.
type UserCompact struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, FullName: u.FullName}
}

// HasPushToken reports whether the user registered a device.
func (u *User) HasPushToken() bool {
	return u.PushToken != ""
}

type CreateLocalUserRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	FullName string `json:"fullName,omitempty" validate:"omitempty,min=2,max=100"`
}

type PushTokenRequest struct {
	Token string `json:"token" validate:"max=255"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
