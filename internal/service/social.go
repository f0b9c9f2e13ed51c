package service

import (
	"context"
	"strings"

	"github.com/atinyakov/GophTube/internal/models"
	"github.com/atinyakov/GophTube/internal/repository"
)

// VideoComments lists the comments under a video, oldest first.
func (s *ContentService) VideoComments(ctx context.Context, videoID string) ([]models.Comment, error) {
	if _, err := s.db.Videos.Get(ctx, videoID); err != nil {
		return nil, notFound(err, "Video not found")
	}
	comments, err := s.db.Comments.Filter(ctx, func(c models.Comment) bool { return c.Video == videoID })
	if err != nil {
		return nil, internal(err)
	}
	for i := range comments {
		comments[i].Owner = s.owner(ctx, comments[i].Owner.UserID())
	}
	return comments, nil
}

// AddComment posts content under a video as userID.
func (s *ContentService) AddComment(ctx context.Context, userID, videoID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, fail(KindInvalid, "Content is required")
	}
	if _, err := s.db.Videos.Get(ctx, videoID); err != nil {
		return models.Comment{}, notFound(err, "Video not found")
	}
	now := s.now()
	c := models.Comment{
		ID:        s.newID(),
		Content:   content,
		Video:     videoID,
		Owner:     models.OwnerID(userID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.Comments.Insert(ctx, c); err != nil {
		return models.Comment{}, internal(err)
	}
	c.Owner = s.owner(ctx, userID)
	return c, nil
}

// UpdateComment replaces the content of a comment written by userID.
func (s *ContentService) UpdateComment(ctx context.Context, userID, commentID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, fail(KindInvalid, "Content is required")
	}
	c, err := s.db.Comments.Update(ctx, commentID, func(c *models.Comment) error {
		if c.Owner.UserID() != userID {
			return fail(KindForbidden, "You are not allowed to modify this comment")
		}
		c.Content = content
		c.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Comment{}, notFound(err, "Comment not found")
	}
	c.Owner = s.owner(ctx, userID)
	return c, nil
}

// DeleteComment removes a comment written by userID and its likes.
func (s *ContentService) DeleteComment(ctx context.Context, userID, commentID string) error {
	c, err := s.db.Comments.Get(ctx, commentID)
	if err != nil {
		return notFound(err, "Comment not found")
	}
	if c.Owner.UserID() != userID {
		return fail(KindForbidden, "You are not allowed to modify this comment")
	}
	if err := s.db.Comments.Delete(ctx, commentID); err != nil {
		return notFound(err, "Comment not found")
	}
	return s.dropLikes(ctx, repository.LikeComment, commentID)
}

// Posts lists community posts, newest first. An empty channelID lists
// every channel.
func (s *ContentService) Posts(ctx context.Context, channelID string) ([]models.CommunityPost, error) {
	if channelID != "" {
		if _, err := s.requireUser(ctx, channelID, "Channel not found"); err != nil {
			return nil, err
		}
	}
	posts, err := s.db.Posts.Filter(ctx, func(p models.CommunityPost) bool {
		return channelID == "" || p.Owner.UserID() == channelID
	})
	if err != nil {
		return nil, internal(err)
	}
	out := make([]models.CommunityPost, 0, len(posts))
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		p.Owner = s.owner(ctx, p.Owner.UserID())
		out = append(out, p)
	}
	return out, nil
}

// CreatePost publishes a community post as userID.
func (s *ContentService) CreatePost(ctx context.Context, userID, content string) (models.CommunityPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.CommunityPost{}, fail(KindInvalid, "Content is required")
	}
	now := s.now()
	p := models.CommunityPost{
		ID:        s.newID(),
		Content:   content,
		Owner:     models.OwnerID(userID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.Posts.Insert(ctx, p); err != nil {
		return models.CommunityPost{}, internal(err)
	}
	p.Owner = s.owner(ctx, userID)
	return p, nil
}

// UpdatePost replaces the content of a post written by userID.
func (s *ContentService) UpdatePost(ctx context.Context, userID, postID, content string) (models.CommunityPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.CommunityPost{}, fail(KindInvalid, "Content is required")
	}
	p, err := s.db.Posts.Update(ctx, postID, func(p *models.CommunityPost) error {
		if p.Owner.UserID() != userID {
			return fail(KindForbidden, "You are not allowed to modify this post")
		}
		p.Content = content
		p.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.CommunityPost{}, notFound(err, "Post not found")
	}
	p.Owner = s.owner(ctx, userID)
	return p, nil
}

// DeletePost removes a post written by userID and its likes.
func (s *ContentService) DeletePost(ctx context.Context, userID, postID string) error {
	p, err := s.db.Posts.Get(ctx, postID)
	if err != nil {
		return notFound(err, "Post not found")
	}
	if p.Owner.UserID() != userID {
		return fail(KindForbidden, "You are not allowed to modify this post")
	}
	if err := s.db.Posts.Delete(ctx, postID); err != nil {
		return notFound(err, "Post not found")
	}
	return s.dropLikes(ctx, repository.LikePost, postID)
}

// ToggleLike likes or unlikes a target and reports whether it is liked now.
func (s *ContentService) ToggleLike(ctx context.Context, userID string, kind repository.LikeKind, targetID string) (bool, error) {
	var err error
	switch kind {
	case repository.LikeVideo:
		_, err = s.db.Videos.Get(ctx, targetID)
		err = notFoundOrNil(err, "Video not found")
	case repository.LikeComment:
		_, err = s.db.Comments.Get(ctx, targetID)
		err = notFoundOrNil(err, "Comment not found")
	case repository.LikePost:
		_, err = s.db.Posts.Get(ctx, targetID)
		err = notFoundOrNil(err, "Post not found")
	default:
		err = fail(KindInvalid, "Unknown like target")
	}
	if err != nil {
		return false, err
	}

	liked, err := s.db.Likes.Toggle(ctx,
		func(l repository.Like) bool { return l.Kind == kind && l.TargetID == targetID && l.UserID == userID },
		func() repository.Like {
			return repository.Like{ID: s.newID(), Kind: kind, TargetID: targetID, UserID: userID, CreatedAt: s.now()}
		},
	)
	if err != nil {
		return false, internal(err)
	}
	return liked, nil
}

// LikedVideos lists the videos userID liked that still exist.
func (s *ContentService) LikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error) {
	likes, err := s.db.Likes.Filter(ctx, func(l repository.Like) bool {
		return l.Kind == repository.LikeVideo && l.UserID == userID
	})
	if err != nil {
		return nil, internal(err)
	}
	out := make([]models.LikedVideo, 0, len(likes))
	for _, l := range likes {
		v, err := s.db.Videos.Get(ctx, l.TargetID)
		if err != nil {
			continue
		}
		out = append(out, models.LikedVideo{
			ID:        l.ID,
			Video:     s.expandVideo(ctx, v),
			LikedBy:   userID,
			CreatedAt: l.CreatedAt,
			UpdatedAt: l.CreatedAt,
		})
	}
	return out, nil
}

func (s *ContentService) dropLikes(ctx context.Context, kind repository.LikeKind, targetID string) error {
	_, err := s.db.Likes.DeleteWhere(ctx, func(l repository.Like) bool { return l.Kind == kind && l.TargetID == targetID })
	if err != nil {
		return internal(err)
	}
	return nil
}

// ToggleSubscription subscribes userID to a channel or cancels the
// subscription, reporting whether userID is subscribed now.
func (s *ContentService) ToggleSubscription(ctx context.Context, userID, channelID string) (bool, error) {
	if _, err := s.requireUser(ctx, channelID, "Channel not found"); err != nil {
		return false, err
	}
	if userID == channelID {
		return false, fail(KindInvalid, "You cannot subscribe to your own channel")
	}
	subscribed, err := s.db.Subscriptions.Toggle(ctx,
		func(sub repository.Subscription) bool { return sub.SubscriberID == userID && sub.ChannelID == channelID },
		func() repository.Subscription {
			return repository.Subscription{ID: s.newID(), SubscriberID: userID, ChannelID: channelID, CreatedAt: s.now()}
		},
	)
	if err != nil {
		return false, internal(err)
	}
	return subscribed, nil
}

// Subscribers lists who follows channelID.
func (s *ContentService) Subscribers(ctx context.Context, channelID string) ([]models.Subscriber, error) {
	if _, err := s.requireUser(ctx, channelID, "Channel not found"); err != nil {
		return nil, err
	}
	subs, err := s.db.Subscriptions.Filter(ctx, func(sub repository.Subscription) bool { return sub.ChannelID == channelID })
	if err != nil {
		return nil, internal(err)
	}
	out := make([]models.Subscriber, 0, len(subs))
	for _, sub := range subs {
		out = append(out, models.Subscriber{
			ID:         sub.ID,
			Subscriber: s.owner(ctx, sub.SubscriberID),
			CreatedAt:  sub.CreatedAt,
		})
	}
	return out, nil
}

// SubscribedChannels lists the channels subscriberID follows.
func (s *ContentService) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error) {
	if _, err := s.requireUser(ctx, subscriberID, "Subscriber not found"); err != nil {
		return nil, err
	}
	subs, err := s.db.Subscriptions.Filter(ctx, func(sub repository.Subscription) bool { return sub.SubscriberID == subscriberID })
	if err != nil {
		return nil, internal(err)
	}
	out := make([]models.SubscribedChannel, 0, len(subs))
	for _, sub := range subs {
		out = append(out, models.SubscribedChannel{
			ID:        sub.ID,
			Channel:   s.owner(ctx, sub.ChannelID),
			CreatedAt: sub.CreatedAt,
		})
	}
	return out, nil
}

// ChannelProfile returns the public page of username as seen by viewerID.
func (s *ContentService) ChannelProfile(ctx context.Context, viewerID, username string) (models.ChannelProfile, error) {
	rec, err := s.db.Users.Find(ctx, func(u repository.UserRecord) bool { return strings.EqualFold(u.Username, username) })
	if err != nil {
		return models.ChannelProfile{}, notFound(err, "Channel does not exist")
	}
	subs, err := s.db.Subscriptions.Filter(ctx, func(sub repository.Subscription) bool {
		return sub.ChannelID == rec.ID || sub.SubscriberID == rec.ID
	})
	if err != nil {
		return models.ChannelProfile{}, internal(err)
	}

	var subscribers, subscribed int64
	isSubscribed := false
	for _, sub := range subs {
		if sub.ChannelID == rec.ID {
			subscribers++
			if sub.SubscriberID == viewerID {
				isSubscribed = true
			}
		}
		if sub.SubscriberID == rec.ID {
			subscribed++
		}
	}

	u := rec.User
	u.WatchHistory = nil
	u.SubscribersCount = &subscribers
	u.SubscribedChannelCount = &subscribed
	u.IsSubscribed = &isSubscribed
	return models.ChannelProfile{User: u}, nil
}

// WatchHistory lists the videos userID watched, most recent first.
func (s *ContentService) WatchHistory(ctx context.Context, userID string) ([]models.Video, error) {
	rec, err := s.requireUser(ctx, userID, "User does not exist")
	if err != nil {
		return nil, err
	}
	out := make([]models.Video, 0, len(rec.WatchHistory))
	for _, id := range rec.WatchHistory {
		v, err := s.db.Videos.Get(ctx, id)
		if err != nil || !visible(v, userID) {
			continue
		}
		out = append(out, s.expandVideo(ctx, v))
	}
	return out, nil
}

func notFoundOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}
	return notFound(err, msg)
}
