package models

import "time"

// Comment is a comment left under a video.
type Comment struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Video     string    `json:"video"`
	Owner     Owner     `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommunityPost is a text post on a channel's community tab.
type CommunityPost struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Owner     Owner     `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Content is the body of comment and post create/update requests.
type Content struct {
	Content string `json:"content"`
}

// Subscriber pairs a subscription with the subscribing user.
type Subscriber struct {
	ID         string    `json:"_id"`
	Subscriber Owner     `json:"subscriber"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SubscribedChannel pairs a subscription with the followed channel.
type SubscribedChannel struct {
	ID        string    `json:"_id"`
	Channel   Owner     `json:"channel"`
	CreatedAt time.Time `json:"createdAt"`
}

// Playlist is an ordered, named collection of videos.
type Playlist struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Videos      []VideoRef `json:"video"`
	Owner       string     `json:"owner"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PlaylistInput is the create/update playlist request body.
type PlaylistInput struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
