package api

import (
	"context"
	"net/url"

	"github.com/atinyakov/GophTube/internal/models"
)

// ToggleVideoLike likes or unlikes a video.
func (c *Client) ToggleVideoLike(ctx context.Context, videoID string) (*models.Envelope[models.VideoLike], error) {
	return call[models.VideoLike](ctx, c, "/likes/vid-like/"+url.PathEscape(videoID), post(nil))
}

// ToggleCommentLike likes or unlikes a comment.
func (c *Client) ToggleCommentLike(ctx context.Context, commentID string) (*models.Envelope[models.CommentLike], error) {
	return call[models.CommentLike](ctx, c, "/likes/comment-like/"+url.PathEscape(commentID), post(nil))
}

// TogglePostLike likes or unlikes a community post.
func (c *Client) TogglePostLike(ctx context.Context, postID string) (*models.Envelope[models.PostLike], error) {
	return call[models.PostLike](ctx, c, "/likes/post-like/"+url.PathEscape(postID), post(nil))
}

// LikedVideos lists the videos liked by the current user.
func (c *Client) LikedVideos(ctx context.Context) (*models.Envelope[[]models.LikedVideo], error) {
	return call[[]models.LikedVideo](ctx, c, "/likes/get-liked-vid", RequestOptions{})
}

// AddComment posts a comment on videoID. channelID is the commenter's id.
func (c *Client) AddComment(ctx context.Context, channelID, videoID, content string) (*models.Envelope[models.Comment], error) {
	endpoint := "/comments/create/" + url.PathEscape(channelID) + "/" + url.PathEscape(videoID)
	return call[models.Comment](ctx, c, endpoint, post(models.Content{Content: content}))
}

// VideoComments lists the comments of a video.
func (c *Client) VideoComments(ctx context.Context, videoID string) (*models.Envelope[[]models.Comment], error) {
	return call[[]models.Comment](ctx, c, "/comments/vid-comments/"+url.PathEscape(videoID), RequestOptions{})
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, commentID, content string) (*models.Envelope[models.Comment], error) {
	return call[models.Comment](ctx, c, "/comments/update-comment/"+url.PathEscape(commentID), post(models.Content{Content: content}))
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, commentID string) (*models.Envelope[models.Empty], error) {
	return call[models.Empty](ctx, c, "/comments/delete-comment/"+url.PathEscape(commentID), post(nil))
}

// CreatePost publishes a community post.
func (c *Client) CreatePost(ctx context.Context, content string) (*models.Envelope[models.CommunityPost], error) {
	return call[models.CommunityPost](ctx, c, "/communities/", post(models.Content{Content: content}))
}

// AllPosts lists every community post.
func (c *Client) AllPosts(ctx context.Context) (*models.Envelope[[]models.CommunityPost], error) {
	return call[[]models.CommunityPost](ctx, c, "/communities/all-post", RequestOptions{})
}

// ChannelPosts lists the posts of one channel.
func (c *Client) ChannelPosts(ctx context.Context, channelID string) (*models.Envelope[[]models.CommunityPost], error) {
	return call[[]models.CommunityPost](ctx, c, "/communities/channel-post/"+url.PathEscape(channelID), RequestOptions{})
}

// UpdatePost replaces a post's content.
func (c *Client) UpdatePost(ctx context.Context, postID, content string) (*models.Envelope[models.CommunityPost], error) {
	return call[models.CommunityPost](ctx, c, "/communities/update-post/"+url.PathEscape(postID), post(models.Content{Content: content}))
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, postID string) (*models.Envelope[models.Empty], error) {
	return call[models.Empty](ctx, c, "/communities/delete-post/"+url.PathEscape(postID), post(nil))
}

// ToggleSubscription subscribes to or unsubscribes from a channel.
func (c *Client) ToggleSubscription(ctx context.Context, channelID string) (*models.Envelope[models.SubscriptionState], error) {
	return call[models.SubscriptionState](ctx, c, "/subscriptions/"+url.PathEscape(channelID), post(nil))
}

// ChannelSubscribers lists who follows channelID. The backend serves this
// read over POST.
func (c *Client) ChannelSubscribers(ctx context.Context, channelID string) (*models.Envelope[[]models.Subscriber], error) {
	return call[[]models.Subscriber](ctx, c, "/subscriptions/channel-subs/"+url.PathEscape(channelID), post(nil))
}

// SubscribedChannels lists the channels subscriberID follows.
func (c *Client) SubscribedChannels(ctx context.Context, subscriberID string) (*models.Envelope[[]models.SubscribedChannel], error) {
	return call[[]models.SubscribedChannel](ctx, c, "/subscriptions/subscribed-channels/"+url.PathEscape(subscriberID), post(nil))
}
