package router

import (
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Repositories is the storage the services run on.
type Repositories struct {
	Users         repositories.UserRepository
	Follows       repositories.FollowRepository
	Friendships   repositories.FriendshipRepository
	Posts         repositories.PostRepository
	Groups        repositories.GroupRepository
	Notifications repositories.NotificationRepository
}

// PersistentRepositories keeps relational data in PostgreSQL and posts,
// with their likes and comments, in MongoDB.
func PersistentRepositories(pgdb *gorm.DB, mgdb *mongo.Database) Repositories {
	return Repositories{
		Users:         repositories.NewPostgresUserRepository(pgdb),
		Follows:       repositories.NewPostgresFollowRepository(pgdb),
		Friendships:   repositories.NewPostgresFriendshipRepository(pgdb),
		Posts:         repositories.NewMongoPostRepository(mgdb),
		Groups:        repositories.NewPostgresGroupRepository(pgdb),
		Notifications: repositories.NewPostgresNotificationRepository(pgdb),
	}
}

// MemoryRepositories serves everything from one in-process store.
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Users:         store.Users(),
		Follows:       store.Follows(),
		Friendships:   store.Friendships(),
		Posts:         store.Posts(),
		Groups:        store.Groups(),
		Notifications: store.Notifications(),
	}
}
