package router

import (
	"github.com/anonto42/focusfeed/backend/internal/events"
	"github.com/anonto42/focusfeed/backend/internal/feed"
	"github.com/anonto42/focusfeed/backend/internal/handlers"
	"github.com/anonto42/focusfeed/backend/internal/middleware"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Repositories bundles the stores the routes depend on.
type Repositories struct {
	Profiles   repositories.ProfileRepository
	Activities repositories.ActivityRepository
	Likes      repositories.LikeRepository
	Comments   repositories.CommentRepository
	Follows    repositories.FollowRepository
}

// NewRepositories wires the PostgreSQL and MongoDB backed stores.
func NewRepositories(pgdb *gorm.DB, activitiesDB *mongo.Database) Repositories {
	return Repositories{
		Profiles:   repositories.NewPostgresProfileRepository(pgdb),
		Activities: repositories.NewMongoActivityRepository(activitiesDB),
		Likes:      repositories.NewPostgresLikeRepository(pgdb),
		Comments:   repositories.NewPostgresCommentRepository(pgdb),
		Follows:    repositories.NewPostgresFollowRepository(pgdb),
	}
}

// Dependencies is everything SetupRoutes needs.
type Dependencies struct {
	Repositories
	Resolver    middleware.IdentityResolver
	Publisher   events.Publisher
	FeedOptions []feed.Option
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}

	e.GET("/health", handlers.HealthCheck)

	service := feed.NewService(
		deps.Activities,
		deps.Likes,
		deps.Comments,
		deps.Profiles,
		deps.Follows,
		deps.FeedOptions...,
	)

	// Every API route resolves the viewer; mutating routes additionally
	// require one.
	api := e.Group("/api/v1")
	api.Use(middleware.Identity(deps.Resolver))

	handlers.NewFeedHandler(service).RegisterFeedRoutes(api)
	log.Debug().Msg("feed routes configured")

	handlers.NewActivityHandler(deps.Activities, deps.Likes, deps.Comments, service, deps.Publisher).RegisterActivityRoutes(api)
	log.Debug().Msg("activity routes configured")

	handlers.NewLikeHandler(deps.Likes, service, deps.Publisher).RegisterLikeRoutes(api)
	log.Debug().Msg("like routes configured")

	handlers.NewCommentHandler(deps.Comments, service, deps.Publisher).RegisterCommentRoutes(api)
	log.Debug().Msg("comment routes configured")

	handlers.NewFollowHandler(deps.Follows, deps.Profiles, deps.Publisher).RegisterFollowRoutes(api)
	log.Debug().Msg("follow routes configured")

	handlers.NewProfileHandler(deps.Profiles, service).RegisterProfileRoutes(api)
	log.Debug().Msg("profile routes configured")
}
