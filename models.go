package main

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Post.Date is a display string ("January 02, 2006"), not a timestamp.
type Post struct {
	ID         int64
	AuthorID   int64
	AuthorName string
	Title      string
	Subtitle   string
	Date       string
	Body       string
	ImgURL     string
}

type Comment struct {
	ID          int64
	Text        string
	AuthorID    int64
	AuthorName  string
	AuthorEmail string
	PostID      int64
	CreatedAt   time.Time
}
