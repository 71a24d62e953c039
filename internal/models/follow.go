package models

import "time"

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	FollowerID  string    `json:"followerId" gorm:"primaryKey;size:40"`
	FollowingID string    `json:"followingId" gorm:"primaryKey;size:40;index"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ActorRequest is the body of relationship and engagement calls that only
// name the acting user.
type ActorRequest struct {
	UserID string `json:"userId"`
}
