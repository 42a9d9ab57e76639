package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/conduit/internal/model"
)

func TestCreateComment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	article := createTestArticle(t, db, alice.ID, "post")

	comment := &model.Comment{
		Body:      "nice post",
		AuthorID:  alice.ID,
		ArticleID: article.ID,
	}
	if err := db.CreateComment(ctx, comment); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if comment.ID == "" {
		t.Error("CreateComment() did not set comment.ID")
	}
	if comment.CreatedAt.IsZero() {
		t.Error("CreateComment() did not set CreatedAt")
	}
}

func TestListComments_OldestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	article := createTestArticle(t, db, alice.ID, "post")
	other := createTestArticle(t, db, alice.ID, "other")

	for i, c := range []struct {
		author string
		body   string
	}{
		{bob.ID, "first"},
		{alice.ID, "second"},
		{bob.ID, "third"},
	} {
		comment := &model.Comment{Body: c.body, AuthorID: c.author, ArticleID: article.ID}
		if err := db.CreateComment(ctx, comment); err != nil {
			t.Fatalf("CreateComment(%d) error = %v", i, err)
		}
	}
	// A comment on another article must not leak into the thread.
	stray := &model.Comment{Body: "stray", AuthorID: bob.ID, ArticleID: other.ID}
	if err := db.CreateComment(ctx, stray); err != nil {
		t.Fatalf("CreateComment(stray) error = %v", err)
	}

	comments, err := db.ListComments(ctx, article.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("ListComments() returned %d comments, want 3", len(comments))
	}

	want := []string{"first", "second", "third"}
	for i, body := range want {
		if comments[i].Body != body {
			t.Errorf("comments[%d].Body = %q, want %q", i, comments[i].Body, body)
		}
	}
	if comments[0].Author.Username != "bob" {
		t.Errorf("comments[0].Author.Username = %q, want bob", comments[0].Author.Username)
	}
}

func TestListComments_Empty(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	article := createTestArticle(t, db, alice.ID, "post")

	comments, err := db.ListComments(context.Background(), article.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if comments == nil {
		t.Error("ListComments() = nil, want empty non-nil slice")
	}
	if len(comments) != 0 {
		t.Errorf("ListComments() returned %d comments, want 0", len(comments))
	}
}
