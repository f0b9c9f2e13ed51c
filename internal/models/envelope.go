package models

import "encoding/json"

// Envelope is the body shape shared by every backend response.
type Envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	Data       T      `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// Empty is the data type of endpoints whose payload is ignored.
type Empty = json.RawMessage

// VideoLike is the payload of the video like toggle.
type VideoLike struct {
	IsVideoLiked bool `json:"isVideoLiked"`
}

// CommentLike is the payload of the comment like toggle.
type CommentLike struct {
	IsCommentLiked bool `json:"isCommentLiked"`
}

// PostLike is the payload of the community post like toggle.
type PostLike struct {
	IsCommunityLiked bool `json:"isCommunityLiked"`
}

// SubscriptionState is the payload of the subscription toggle.
type SubscriptionState struct {
	IsSubscribed bool `json:"isSubscribed"`
}
