package models

import "time"

const (
	FriendshipNone     = "none"
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Friendship is the single edge between an unordered pair of users. The pair
// is stored sorted so there is exactly one row per pair; the absence of a row
// is the "none" state.
type Friendship struct {
	ID          string    `json:"id" gorm:"primaryKey;size:40"`
	UserLowID   string    `json:"-" gorm:"size:40;uniqueIndex:idx_friendship_pair"`
	UserHighID  string    `json:"-" gorm:"size:40;uniqueIndex:idx_friendship_pair;index"`
	RequesterID string    `json:"requesterId" gorm:"size:40;index"`
	Status      string    `json:"status" gorm:"size:20;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FriendPair orders two user ids the way friendship rows are keyed.
func FriendPair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other returns the endpoint that is not userID.
func (f *Friendship) Other(userID string) string {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}

// FriendshipStatus is the relationship between two users as seen by one of
// them.
type FriendshipStatus struct {
	Status          string `json:"status"`
	RequesterID     string `json:"requesterId,omitempty"`
	CanSendRequest  bool   `json:"canSendRequest"`
	CanAccept       bool   `json:"canAccept"`
	CanCancel       bool   `json:"canCancel"`
	AreFriends      bool   `json:"areFriends"`
	RequestSent     bool   `json:"requestSent"`
	RequestReceived bool   `json:"requestReceived"`
}
