package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/conduit/internal/apperror"
)

func TestAddFollow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if err := db.AddFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("AddFollow() error = %v", err)
	}

	following, err := db.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("IsFollowing() error = %v", err)
	}
	if !following {
		t.Error("IsFollowing() = false after AddFollow, want true")
	}

	// The edge is directed: bob does not follow alice back.
	reverse, err := db.IsFollowing(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("IsFollowing() reverse error = %v", err)
	}
	if reverse {
		t.Error("IsFollowing() reverse = true, want false")
	}
}

func TestAddFollow_Duplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if err := db.AddFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("AddFollow() error = %v", err)
	}
	err := db.AddFollow(ctx, alice.ID, bob.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("AddFollow() duplicate error = %v, want ErrConflict", err)
	}
}

func TestRemoveFollow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if err := db.AddFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("AddFollow() error = %v", err)
	}

	removed, err := db.RemoveFollow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("RemoveFollow() error = %v", err)
	}
	if !removed {
		t.Error("RemoveFollow() = false, want true")
	}

	// Removing an absent edge is a no-op, not an error.
	removed, err = db.RemoveFollow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("RemoveFollow() absent edge error = %v", err)
	}
	if removed {
		t.Error("RemoveFollow() absent edge = true, want false")
	}
}

func TestFolloweeIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	ids, err := db.FolloweeIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("FolloweeIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("FolloweeIDs() with no follows = %v, want empty", ids)
	}

	if err := db.AddFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("AddFollow(bob) error = %v", err)
	}
	if err := db.AddFollow(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("AddFollow(carol) error = %v", err)
	}

	ids, err = db.FolloweeIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("FolloweeIDs() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("FolloweeIDs() = %v, want 2 ids", ids)
	}
	found := map[string]bool{}
	for _, id := range ids {
		found[id] = true
	}
	if !found[bob.ID] || !found[carol.ID] {
		t.Errorf("FolloweeIDs() = %v, want bob and carol", ids)
	}
}
