// Package ids generates the prefix-tagged opaque identifiers used for every
// entity.
package ids

import (
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PrefixUser         = "u"
	PrefixPost         = "p"
	PrefixComment      = "c"
	PrefixGroup        = "g"
	PrefixNotification = "n"
	PrefixFriendship   = "f"
)

// New returns prefix followed by a dashless uuid.
func New(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewDocument returns prefix followed by a fresh ObjectID hex, for entities
// stored in MongoDB so ids keep their creation-time ordering.
func NewDocument(prefix string) string {
	return prefix + primitive.NewObjectID().Hex()
}

func User() string         { return New(PrefixUser) }
func Group() string        { return New(PrefixGroup) }
func Notification() string { return New(PrefixNotification) }
func Friendship() string   { return New(PrefixFriendship) }
func Post() string         { return NewDocument(PrefixPost) }
func Comment() string      { return NewDocument(PrefixComment) }

// HasPrefix reports whether id is non-empty and tagged with prefix.
func HasPrefix(id, prefix string) bool {
	return len(id) > len(prefix) && strings.HasPrefix(id, prefix)
}
