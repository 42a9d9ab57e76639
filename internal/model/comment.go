package model

import "time"

// Comment belongs to exactly one article and one author. Deleting the
// article cascades to its comments at the storage layer.
type Comment struct {
	ID        string    `json:"id"        db:"id"`
	Body      string    `json:"body"      db:"body"`
	AuthorID  string    `json:"-"         db:"author_id"`
	ArticleID string    `json:"-"         db:"article_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CommentView is a comment joined with its author summary for responses.
type CommentView struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    Profile   `json:"author"`
}
