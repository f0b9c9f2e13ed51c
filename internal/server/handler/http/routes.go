package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth      *AuthHandler
	Videos    *VideoHandler
	Social    *SocialHandler
	Playlists *PlaylistHandler
}

// RouterOptions carries the cross-cutting pieces of the router.
type RouterOptions struct {
	// Authenticator resolves access tokens for the protected routes.
	Authenticator middleware.Authenticator
	// Metrics, when set, observes every request.
	Metrics *middleware.Metrics
	// MetricsHandler, when set, is served on GET /metrics.
	MetricsHandler http.Handler
	Logger         *zap.Logger
}

// NewRouter constructs the HTTP handler serving the GophTube API under
// /api/v1.
//
// Middleware chain (applied in order):
//  1. RequestID: tags each request
//  2. Metrics: counts requests per route
//  3. WithRequestLogging(logger): logs incoming requests
//  4. Recoverer: turns panics into 500s
//  5. AllowContentType(json, multipart): rejects other bodies
//
// Register, login and refresh are public; every other route requires an
// access token (middleware.Auth).
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(middleware.WithRequestLogging(opts.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/users/register", h.Auth.Register)
		r.Post("/users/login", h.Auth.Login)
		r.Post("/users/refresh-access-token", h.Auth.RefreshToken)

		// Protected group: requires a valid access token
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(opts.Authenticator))

			r.Route("/users", func(r chi.Router) {
				r.Post("/logout", h.Auth.Logout)
				r.Get("/current-user", h.Auth.CurrentUser)
				r.Post("/change-password", h.Auth.ChangePassword)
				r.Post("/update-user-detail", h.Auth.UpdateDetails)
				r.Post("/update-avatar", h.Auth.UpdateAvatar)
				r.Post("/update-cover-image", h.Auth.UpdateCoverImage)
				r.Get("/channel/{username}", h.Auth.ChannelProfile)
				r.Get("/watch-history", h.Auth.WatchHistory)
			})

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", h.Videos.List)
				r.Get("/vid/{videoId}", h.Videos.Get)
				r.Post("/publish-video", h.Videos.Publish)
				r.Post("/update-video/{videoId}", h.Videos.Update)
				r.Post("/delete/{videoId}", h.Videos.Delete)
				r.Post("/publish-status/{videoId}", h.Videos.TogglePublish)
			})

			r.Route("/likes", func(r chi.Router) {
				r.Post("/vid-like/{videoId}", h.Social.LikeVideo)
				r.Post("/comment-like/{commentId}", h.Social.LikeComment)
				r.Post("/post-like/{postId}", h.Social.LikePost)
				r.Get("/get-liked-vid", h.Social.LikedVideos)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Post("/create/{channelId}/{videoId}", h.Social.AddComment)
				r.Get("/vid-comments/{videoId}", h.Social.VideoComments)
				r.Post("/update-comment/{commentId}", h.Social.UpdateComment)
				r.Post("/delete-comment/{commentId}", h.Social.DeleteComment)
			})

			r.Route("/communities", func(r chi.Router) {
				r.Post("/", h.Social.CreatePost)
				r.Get("/all-post", h.Social.AllPosts)
				r.Get("/channel-post/{channelId}", h.Social.ChannelPosts)
				r.Post("/update-post/{postId}", h.Social.UpdatePost)
				r.Post("/delete-post/{postId}", h.Social.DeletePost)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/{channelId}", h.Social.ToggleSubscription)
				r.Post("/channel-subs/{channelId}", h.Social.Subscribers)
				r.Post("/subscribed-channels/{subscriberId}", h.Social.SubscribedChannels)
			})

			r.Route("/playlists", func(r chi.Router) {
				r.Post("/", h.Playlists.Create)
				r.Post("/add-videos/{playlistId}/{videoId}", h.Playlists.AddVideo)
				r.Post("/remove-video/{playlistId}/{videoId}", h.Playlists.RemoveVideo)
				r.Get("/get-playlist/{playlistId}", h.Playlists.Get)
				r.Get("/get-user-playlist/{userId}", h.Playlists.UserPlaylists)
				r.Post("/update-playlist/{playlistId}", h.Playlists.Update)
				r.Post("/delete-playlist/{playlistId}", h.Playlists.Delete)
			})
		})
	})

	return r
}
