package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/conduit/internal/model"
)

// newTestDB opens a fresh in-memory database with the full schema. Each
// test gets its own; t.Cleanup tears it down when the test (or subtest)
// finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "not-a-real-hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return user
}

func createTestArticle(t *testing.T, db *DB, authorID, slug string, tags ...string) *model.Article {
	t.Helper()
	article := &model.Article{
		Slug:     slug,
		Title:    slug,
		Body:     "body of " + slug,
		TagList:  tags,
		AuthorID: authorID,
	}
	if err := db.CreateArticle(context.Background(), article); err != nil {
		t.Fatalf("failed to create test article %s: %v", slug, err)
	}
	return article
}
