package model

import "time"

// Article is the persisted article row.
//
// Slug is derived from the title and unique across all articles; the UNIQUE
// constraint in the store is the authority, the service-level pre-check only
// produces a friendlier error for the common case.
//
// FavoritesCount is the denormalized counter column. It is updated in the
// same transaction as every favorite/unfavorite, so after any successful
// mutation it equals the number of favorite rows referencing this article.
// Listing reads still compute the count live from the favorites relation in
// the same query pass, so a reader never observes a stale counter.
type Article struct {
	ID             string    `json:"id"             db:"id"`
	Slug           string    `json:"slug"           db:"slug"`
	Title          string    `json:"title"          db:"title"`
	Description    string    `json:"description"    db:"description"`
	Body           string    `json:"body"           db:"body"`
	TagList        []string  `json:"tagList"        db:"tag_list"`
	FavoritesCount int       `json:"favoritesCount" db:"favorites_count"`
	AuthorID       string    `json:"-"              db:"author_id"`
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt"      db:"updated_at"`
}

// ArticleView is an article enriched for a particular viewer: the plain
// article fields, the author summary, and the per-viewer derived fields.
// This is what listing, feed, and all single-article responses return.
type ArticleView struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Favorited      bool      `json:"favorited"`
	FavoritesCount int       `json:"favoritesCount"`
	Author         Profile   `json:"author"`
}
