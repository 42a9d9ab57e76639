package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/conduit/internal/apperror"
)

func newCommentService(t *testing.T) (*CommentService, *fakeUserRepo, *fakeArticleRepo) {
	t.Helper()
	users := newFakeUserRepo()
	articles := newFakeArticleRepo(users)
	comments := newFakeCommentRepo(users)
	return NewCommentService(comments, articles, users, testLogger()), users, articles
}

func TestCommentCreate(t *testing.T) {
	svc, users, articles := newCommentService(t)
	alice := users.addUser("alice")
	bob := users.addUser("bob")
	seedArticle(t, articles, alice.ID, "post")

	comment, err := svc.Create(context.Background(), "post", bob.ID, "  great write-up  ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if comment.Body != "great write-up" {
		t.Errorf("Body = %q, want trimmed", comment.Body)
	}
	if comment.Author.Username != "bob" {
		t.Errorf("Author.Username = %q, want bob", comment.Author.Username)
	}
	if comment.ID == "" {
		t.Error("comment ID not set")
	}
}

func TestCommentCreate_Validation(t *testing.T) {
	svc, users, articles := newCommentService(t)
	alice := users.addUser("alice")
	seedArticle(t, articles, alice.ID, "post")

	for name, body := range map[string]string{
		"empty":      "",
		"whitespace": "   ",
		"too long":   strings.Repeat("x", MaxCommentLength+1),
	} {
		if _, err := svc.Create(context.Background(), "post", alice.ID, body); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Create() %s body error = %v, want ErrValidation", name, err)
		}
	}
}

func TestCommentCreate_UnknownArticle(t *testing.T) {
	svc, users, _ := newCommentService(t)
	alice := users.addUser("alice")

	_, err := svc.Create(context.Background(), "missing", alice.ID, "hello")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Create() unknown article error = %v, want ErrNotFound", err)
	}
}

func TestCommentList(t *testing.T) {
	svc, users, articles := newCommentService(t)
	alice := users.addUser("alice")
	bob := users.addUser("bob")
	seedArticle(t, articles, alice.ID, "post")

	for _, body := range []string{"first", "second"} {
		if _, err := svc.Create(context.Background(), "post", bob.ID, body); err != nil {
			t.Fatalf("Create(%q) error = %v", body, err)
		}
	}

	comments, err := svc.List(context.Background(), "post")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("List() returned %d comments, want 2", len(comments))
	}
	if comments[0].Body != "first" || comments[1].Body != "second" {
		t.Errorf("List() order = [%q %q], want [first second]", comments[0].Body, comments[1].Body)
	}
}

func TestCommentList_UnknownArticle(t *testing.T) {
	svc, _, _ := newCommentService(t)

	_, err := svc.List(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("List() unknown article error = %v, want ErrNotFound", err)
	}
}
