package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/newsflash/backend/internal/handlers"
	"github.com/anonto42/newsflash/backend/internal/middleware"
	"github.com/anonto42/newsflash/backend/internal/newsflash"
	"github.com/anonto42/newsflash/backend/internal/notify"
	"github.com/anonto42/newsflash/backend/internal/services"
	"github.com/anonto42/newsflash/backend/pkg/config"
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/anonto42/newsflash/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries everything besides storage that the routes depend on.
type Options struct {
	RelationshipModel string
	JWTSecret         string
	RequireAuth       bool
	ExposeInternal    bool
	FirebaseAuth      *auth.Client
	Generator         newsflash.Generator
	Newsflash         newsflash.Options
	Notifier          notify.Enqueuer
}

// Services is the wired business layer.
type Services struct {
	Graph       services.Graph
	Friendships *services.FriendshipService
	Follows     *services.FollowService
	Audience    *services.AudienceResolver
	Posts       *services.PostService
	Engagement  *services.EngagementService
	Groups      *services.GroupService
}

// NewServices builds the services over repos. Only the relationship model
// named in opts backs the audience graph.
func NewServices(repos Repositories, opts Options) *Services {
	if opts.Generator == nil {
		opts.Generator = newsflash.Fallback{}
	}

	s := &Services{
		Friendships: services.NewFriendshipService(repos.Users, repos.Friendships, opts.Notifier),
		Follows:     services.NewFollowService(repos.Users, repos.Follows, opts.Notifier),
		Groups:      services.NewGroupService(repos.Groups, repos.Users, opts.Notifier),
	}
	s.Graph = s.Friendships
	if opts.RelationshipModel == config.RelationshipFollow {
		s.Graph = s.Follows
	}
	s.Audience = services.NewAudienceResolver(s.Graph, repos.Users, repos.Groups)
	s.Posts = services.NewPostService(repos.Posts, repos.Users, s.Audience, opts.Generator, opts.Newsflash, opts.Notifier)
	s.Engagement = services.NewEngagementService(repos.Posts, repos.Users, s.Audience, opts.Notifier)
	return s
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, repos Repositories, opts Options) *Services {
	l := logger.L()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(opts.ExposeInternal)

	svc := NewServices(repos, opts)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(repos.Users, opts.FirebaseAuth, opts.JWTSecret).RegisterAuthRoutes(authGroup)

	api := e.Group("/api/v1")
	api.Use(middleware.Authenticate(middleware.AuthConfig{
		JWTSecret: opts.JWTSecret,
		Firebase:  opts.FirebaseAuth,
		Users:     repos.Users,
		Required:  opts.RequireAuth,
	}))

	handlers.NewUserHandler(repos.Users).RegisterUserRoutes(api)

	if opts.RelationshipModel == config.RelationshipFollow {
		handlers.NewFollowHandler(svc.Follows).RegisterFollowRoutes(api)
	} else {
		handlers.NewFriendshipHandler(svc.Friendships).RegisterFriendshipRoutes(api)
	}

	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(api)
	handlers.NewFeedHandler(svc.Posts).RegisterFeedRoutes(api)
	handlers.NewLikeHandler(svc.Engagement).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(svc.Engagement).RegisterCommentRoutes(api)
	handlers.NewGroupHandler(svc.Groups).RegisterGroupRoutes(api)
	handlers.NewNotificationHandler(repos.Notifications, repos.Users).RegisterNotificationRoutes(api)

	l.Info().
		Str("relationship_model", opts.RelationshipModel).
		Bool("require_auth", opts.RequireAuth).
		Int("routes", len(e.Routes())).
		Msg("routes configured")
	return svc
}
