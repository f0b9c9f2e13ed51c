package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/middleware"
	"github.com/atinyakov/GophTube/internal/models"
	"github.com/atinyakov/GophTube/internal/repository"
)

// SocialService defines the comment, like, community and subscription
// operations required by SocialHandler.
type SocialService interface {
	VideoComments(ctx context.Context, videoID string) ([]models.Comment, error)
	AddComment(ctx context.Context, userID, videoID, content string) (models.Comment, error)
	UpdateComment(ctx context.Context, userID, commentID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error

	Posts(ctx context.Context, channelID string) ([]models.CommunityPost, error)
	CreatePost(ctx context.Context, userID, content string) (models.CommunityPost, error)
	UpdatePost(ctx context.Context, userID, postID, content string) (models.CommunityPost, error)
	DeletePost(ctx context.Context, userID, postID string) error

	ToggleLike(ctx context.Context, userID string, kind repository.LikeKind, targetID string) (bool, error)
	LikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error)

	ToggleSubscription(ctx context.Context, userID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelID string) ([]models.Subscriber, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error)
}

// SocialHandler handles the /comments, /likes, /communities and
// /subscriptions endpoints.
type SocialHandler struct {
	SocialService SocialService
	Logger        *zap.Logger
}

// commentResponse renders the owner the way an aggregation lookup does:
// as a one-element array.
type commentResponse struct {
	models.Comment
	Owner []models.User `json:"owner"`
}

// VideoComments handles GET /comments/vid-comments/{videoId}.
func (h *SocialHandler) VideoComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.SocialService.VideoComments(r.Context(), chi.URLParam(r, "videoId"))
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		resp := commentResponse{Comment: c, Owner: []models.User{}}
		if u, ok := c.Owner.Expanded(); ok {
			resp.Owner = append(resp.Owner, u)
		}
		out = append(out, resp)
	}
	respond(w, http.StatusOK, out, "Comments fetched successfully")
}

// AddComment handles POST /comments/create/{channelId}/{videoId}.
// channelId must name the authenticated user.
func (h *SocialHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if chi.URLParam(r, "channelId") != userID {
		respond(w, http.StatusForbidden, nil, "You can only comment as yourself")
		return
	}
	var in models.Content
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request")
		return
	}
	c, err := h.SocialService.AddComment(r.Context(), userID, chi.URLParam(r, "videoId"), in.Content)
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusCreated, c, "Comment added successfully")
}

// UpdateComment handles POST /comments/update-comment/{commentId}.
func (h *SocialHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var in models.Content
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request")
		return
	}
	c, err := h.SocialService.UpdateComment(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "commentId"), in.Content)
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, c, "Comment updated successfully")
}

// DeleteComment handles POST /comments/delete-comment/{commentId}.
func (h *SocialHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.SocialService.DeleteComment(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "commentId")); err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, struct{}{}, "Comment deleted successfully")
}

// AllPosts handles GET /communities/all-post.
func (h *SocialHandler) AllPosts(w http.ResponseWriter, r *http.Request) {
	h.posts(w, r, "")
}

// ChannelPosts handles GET /communities/channel-post/{channelId}.
func (h *SocialHandler) ChannelPosts(w http.ResponseWriter, r *http.Request) {
	h.posts(w, r, chi.URLParam(r, "channelId"))
}

func (h *SocialHandler) posts(w http.ResponseWriter, r *http.Request, channelID string) {
	posts, err := h.SocialService.Posts(r.Context(), channelID)
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, posts, "Posts fetched successfully")
}

// CreatePost handles POST /communities/.
func (h *SocialHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in models.Content
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request")
		return
	}
	p, err := h.SocialService.CreatePost(r.Context(), middleware.GetUserIDFromContext(r.Context()), in.Content)
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusCreated, p, "Post created successfully")
}

// UpdatePost handles POST /communities/update-post/{postId}.
func (h *SocialHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var in models.Content
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request")
		return
	}
	p, err := h.SocialService.UpdatePost(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "postId"), in.Content)
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, p, "Post updated successfully")
}

// DeletePost handles POST /communities/delete-post/{postId}.
func (h *SocialHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.SocialService.DeletePost(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "postId")); err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, struct{}{}, "Post deleted successfully")
}

// LikeVideo handles POST /likes/vid-like/{videoId}.
func (h *SocialHandler) LikeVideo(w http.ResponseWriter, r *http.Request) {
	liked, ok := h.toggleLike(w, r, repository.LikeVideo, "videoId")
	if ok {
		respond(w, http.StatusOK, models.VideoLike{IsVideoLiked: liked}, "Video like toggled")
	}
}

// LikeComment handles POST /likes/comment-like/{commentId}.
func (h *SocialHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	liked, ok := h.toggleLike(w, r, repository.LikeComment, "commentId")
	if ok {
		respond(w, http.StatusOK, models.CommentLike{IsCommentLiked: liked}, "Comment like toggled")
	}
}

// LikePost handles POST /likes/post-like/{postId}.
func (h *SocialHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	liked, ok := h.toggleLike(w, r, repository.LikePost, "postId")
	if ok {
		respond(w, http.StatusOK, models.PostLike{IsCommunityLiked: liked}, "Post like toggled")
	}
}

func (h *SocialHandler) toggleLike(w http.ResponseWriter, r *http.Request, kind repository.LikeKind, param string) (bool, bool) {
	liked, err := h.SocialService.ToggleLike(r.Context(), middleware.GetUserIDFromContext(r.Context()), kind, chi.URLParam(r, param))
	if err != nil {
		fail(w, h.Logger, err)
		return false, false
	}
	return liked, true
}

// LikedVideos handles GET /likes/get-liked-vid.
func (h *SocialHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	liked, err := h.SocialService.LikedVideos(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, liked, "Liked videos fetched successfully")
}

// ToggleSubscription handles POST /subscriptions/{channelId}.
func (h *SocialHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	on, err := h.SocialService.ToggleSubscription(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "channelId"))
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, models.SubscriptionState{IsSubscribed: on}, "Subscription toggled")
}

// Subscribers handles POST /subscriptions/channel-subs/{channelId}.
func (h *SocialHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.SocialService.Subscribers(r.Context(), chi.URLParam(r, "channelId"))
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, subs, "Subscribers fetched successfully")
}

// SubscribedChannels handles POST /subscriptions/subscribed-channels/{subscriberId}.
func (h *SocialHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.SocialService.SubscribedChannels(r.Context(), chi.URLParam(r, "subscriberId"))
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, channels, "Subscribed channels fetched successfully")
}
