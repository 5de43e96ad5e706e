package models

import "time"

type Post struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"user"`
	Photo       string    `json:"photo"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Likes       []string  `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Post) LikedBy(userID string) bool {
	return contains(p.Likes, userID)
}

type PostUpdate struct {
	Photo       *string
	Description *string
	Location    *string
}

func (u PostUpdate) Empty() bool {
	return u.Photo == nil && u.Description == nil && u.Location == nil
}
