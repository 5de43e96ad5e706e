package models

import "time"

type Comment struct {
	ID          string    `json:"_id"`
	PostID      string    `json:"postId"`
	UserID      string    `json:"user"`
	CommentText string    `json:"commentText"`
	CreatedAt   time.Time `json:"createdAt"`
}
