package community_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pupwalk/pupwalk/internal/community"
	"github.com/pupwalk/pupwalk/internal/realtime"
	"github.com/pupwalk/pupwalk/internal/store"
)

func newService(t *testing.T) (*community.Service, *realtime.MemoryNotifier) {
	t.Helper()
	notifier := realtime.NewMemoryNotifier()
	return community.NewService(store.NewMemoryStore(), notifier), notifier
}

func TestPostCommentValidatesAndPublishes(t *testing.T) {
	svc, notifier := newService(t)
	ctx := context.Background()

	changes, cancel, err := notifier.Subscribe(ctx, realtime.CollectionComments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cancel()

	if _, err := svc.PostComment(ctx, "u1", "78701", "   "); !errors.Is(err, community.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank body, got %v", err)
	}
	if _, err := svc.PostComment(ctx, "", "78701", "icy sidewalks"); !errors.Is(err, community.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing user, got %v", err)
	}

	c, err := svc.PostComment(ctx, "u1", "78701", "  icy sidewalks on 5th  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID == "" {
		t.Error("comment id not assigned")
	}
	if c.Body != "icy sidewalks on 5th" {
		t.Errorf("body = %q, want trimmed text", c.Body)
	}

	select {
	case change := <-changes:
		if change.Collection != realtime.CollectionComments || change.Action != "create" {
			t.Errorf("change = %+v", change)
		}
		if change.RecordID != c.ID || change.ZipCode != "78701" {
			t.Errorf("change record = %q zip %q", change.RecordID, change.ZipCode)
		}
	case <-time.After(time.Second):
		t.Fatal("no change published for new comment")
	}

	listed, err := svc.ListComments(ctx, "78701")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != c.ID {
		t.Errorf("listed = %+v", listed)
	}
}

func TestListCommentsRequiresZip(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.ListComments(context.Background(), " "); !errors.Is(err, community.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSetHomePublishesUpdate(t *testing.T) {
	svc, notifier := newService(t)
	ctx := context.Background()

	l1, err := svc.SaveLocation(ctx, "u1", "Austin, TX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l2, err := svc.SaveLocation(ctx, "u1", "Portland, OR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changes, cancel, err := notifier.Subscribe(ctx, realtime.CollectionLocations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cancel()

	if err := svc.SetHome(ctx, "u1", l2.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case change := <-changes:
		if change.Action != "update" || change.RecordID != l2.ID {
			t.Errorf("change = %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("no change published for home update")
	}

	locs, err := svc.ListLocations(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locs[0].ID != l2.ID || !locs[0].IsHome {
		t.Errorf("first listed = %+v, want home %q", locs[0], l2.ID)
	}

	homes, err := svc.HomeLocations(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(homes) != 1 || homes[0] != "Portland, OR" {
		t.Errorf("homes = %v", homes)
	}
	_ = l1
}

func TestDogLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.AddDog(ctx, "u1", "  ", ""); !errors.Is(err, community.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}

	d, err := svc.AddDog(ctx, "u1", "Biscuit", "78701")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dogs, err := svc.ListDogs(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dogs) != 1 || dogs[0].Name != "Biscuit" {
		t.Errorf("dogs = %+v", dogs)
	}

	if err := svc.DeleteDog(ctx, "u1", d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteDog(ctx, "u1", d.ID); !errors.Is(err, community.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
