package gormrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"merry/internal/domain/apperr"
	"merry/internal/domain/notification"
	"merry/internal/testutil/dbtest"
	"merry/pkg/id"
)

func TestNotificationRepository_MarkRead(t *testing.T) {
	repo := NewNotificationRepository(dbtest.Open(t))
	ctx := context.Background()
	owner := id.NewID32()

	n := notification.Notification{ID: id.NewID32(), UserID: owner, Type: "payment_reminder", Title: "Contribution due"}
	if err := repo.CreateBatch(ctx, []notification.Notification{n}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	now := time.Now().UTC()
	if err := repo.MarkRead(ctx, n.ID, id.NewID32(), now); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("another user's read: want ErrNotFound, got %v", err)
	}
	if err := repo.MarkRead(ctx, n.ID, owner, now); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	got, err := repo.ListByUser(ctx, owner, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 1 || got[0].ReadAt == nil {
		t.Fatalf("unexpected list: %+v", got)
	}
}
