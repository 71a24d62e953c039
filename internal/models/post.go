package models

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

type AudienceType string

const (
	AudiencePublic  AudienceType = "public"
	AudienceFriends AudienceType = "friends"
	AudienceFriend  AudienceType = "friend"
	AudienceGroups  AudienceType = "groups"
)

type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityFriendsOnly Visibility = "friends_only"
	VisibilityFriendOnly  Visibility = "friend_only"
	VisibilityGroupsOnly  Visibility = "groups_only"
)

// MaxPostGroups bounds the groups a single post can target.
const MaxPostGroups = 5

// Post is a newsflash stored in MongoDB. Likes and comments are embedded so
// a single document update keeps them and their counts consistent.
type Post struct {
	ID             string       `json:"id" bson:"_id"`
	UserID         string       `json:"userId" bson:"user_id"`
	AuthorName     string       `json:"authorName" bson:"author_name"`
	RawText        string       `json:"rawText" bson:"raw_text"`
	GeneratedText  string       `json:"generatedText" bson:"generated_text"`
	AudienceType   AudienceType `json:"audienceType" bson:"audience_type"`
	TargetFriendID string       `json:"targetFriendId,omitempty" bson:"target_friend_id,omitempty"`
	GroupIDs       []string     `json:"groupIds,omitempty" bson:"group_ids,omitempty"`
	Visibility     Visibility   `json:"visibility" bson:"visibility"`
	Likes          []string     `json:"likes" bson:"likes"`
	Comments       []Comment    `json:"comments" bson:"comments"`
	LikesCount     int          `json:"likesCount" bson:"likes_count"`
	CommentsCount  int          `json:"commentsCount" bson:"comments_count"`
	CreatedAt      time.Time    `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" bson:"updated_at"`
}

// Comment is embedded in its post.
type Comment struct {
	ID        string    `json:"id" bson:"id"`
	PostID    string    `json:"postId" bson:"post_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// MaxCommentLength is counted in runes.
const MaxCommentLength = 500

// Audience returns the declared audience of the post.
func (p *Post) Audience() Audience {
	return Audience{Type: p.AudienceType, TargetFriendID: p.TargetFriendID, GroupIDs: p.GroupIDs}
}

// HasLiked reports whether userID is in the likes set.
func (p *Post) HasLiked(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Audience is the tagged union describing who a post is for: "friend"
// carries TargetFriendID, "groups" carries GroupIDs, the others carry
// neither.
type Audience struct {
	Type           AudienceType `json:"audienceType,omitempty"`
	TargetFriendID string       `json:"targetFriendId,omitempty"`
	GroupIDs       []string     `json:"groupIds,omitempty"`
}

// Normalize fills in the default type (groups when group ids are present,
// public otherwise) and drops repeated group ids.
func (a Audience) Normalize() Audience {
	if len(a.GroupIDs) > 0 {
		a.GroupIDs = lo.Uniq(a.GroupIDs)
	}
	if a.Type == "" {
		if len(a.GroupIDs) > 0 {
			a.Type = AudienceGroups
		} else {
			a.Type = AudiencePublic
		}
	}
	return a
}

// Problem describes why a normalized audience is malformed, or returns "".
func (a Audience) Problem() string {
	switch a.Type {
	case AudiencePublic, AudienceFriends:
		if a.TargetFriendID != "" || len(a.GroupIDs) > 0 {
			return fmt.Sprintf("audience %q takes neither targetFriendId nor groupIds", a.Type)
		}
	case AudienceFriend:
		if a.TargetFriendID == "" {
			return "targetFriendId is required for audience \"friend\""
		}
		if len(a.GroupIDs) > 0 {
			return "groupIds are not allowed for audience \"friend\""
		}
	case AudienceGroups:
		if len(a.GroupIDs) == 0 {
			return "groupIds are required for audience \"groups\""
		}
		if len(a.GroupIDs) > MaxPostGroups {
			return fmt.Sprintf("a post can target at most %d groups", MaxPostGroups)
		}
		if a.TargetFriendID != "" {
			return "targetFriendId is not allowed for audience \"groups\""
		}
		for _, id := range a.GroupIDs {
			if id == "" {
				return "groupIds must not contain empty ids"
			}
		}
	default:
		return fmt.Sprintf("unknown audience type %q", a.Type)
	}
	return ""
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	UserID  string `json:"userId"`
	RawText string `json:"rawText" validate:"required,max=2000"`
	Audience
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	UserID  string `json:"userId"`
	RawText string `json:"rawText" validate:"required,max=2000"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text" validate:"required,max=500"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	IsLiked    bool   `json:"isLiked"`
	LikesCount int    `json:"likesCount"`
	Action     string `json:"action"`
}
