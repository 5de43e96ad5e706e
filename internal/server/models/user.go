package models

import "time"

// User is the account record. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID              string    `json:"_id"`
	Username        string    `json:"username,omitempty"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	ProfileImg      string    `json:"profileImg"`
	Bio             string    `json:"bio"`
	Followings      []string  `json:"followings"`
	Followers       []string  `json:"followers"`
	BookmarkedPosts []string  `json:"bookmarkedPosts"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UserSummary is the reduced shape returned by the public user listing.
type UserSummary struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

// IsFollowing reports whether u follows id.
func (u *User) IsFollowing(id string) bool {
	return contains(u.Followings, id)
}

func (u *User) HasBookmarked(postID string) bool {
	return contains(u.BookmarkedPosts, postID)
}

// UserUpdate is a partial profile update; nil fields are left unchanged.
// Password, when set, is already hashed.
type UserUpdate struct {
	Username   *string
	Email      *string
	Password   *string
	ProfileImg *string
	Bio        *string
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil && u.ProfileImg == nil && u.Bio == nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
