package impl

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"asafe-api/internal/domain"

	"github.com/google/uuid"
)

func newNotificationService(st *memoryStore, rt *stubRealtime, email *stubEmailService) *NotificationServiceImpl {
	return &NotificationServiceImpl{Store: st, Realtime: rt, Email: email, Reporter: &stubReporter{}}
}

func TestNotifyUserPersistsPushesAndEmails(t *testing.T) {
	st := newMemoryStore()
	rt := &stubRealtime{}
	email := &stubEmailService{}
	svc := newNotificationService(st, rt, email)
	u := seedUser(st, "n@example.com", domain.RoleUser, true, "h")

	n, err := svc.NotifyUser(context.Background(), u.ID, "hi", true)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if n.UserID == nil || *n.UserID != u.ID || n.Read {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if len(rt.pushes) != 1 || rt.pushes[0].userID == nil || *rt.pushes[0].userID != u.ID {
		t.Fatalf("expected one directed push, got %+v", rt.pushes)
	}
	if rt.pushes[0].event.Message != "hi" || rt.pushes[0].event.ID != n.ID.String() {
		t.Fatalf("unexpected event: %+v", rt.pushes[0].event)
	}
	if len(email.sent) != 1 || email.sent[0].subject != SubjectNotification || email.sent[0].to != u.Email {
		t.Fatalf("unexpected email: %+v", email.sent)
	}
}

func TestNotifyUserEmailFailureKeepsRowAndPush(t *testing.T) {
	st := newMemoryStore()
	rt := &stubRealtime{}
	email := &stubEmailService{err: errors.New("mail transport exploded")}
	svc := newNotificationService(st, rt, email)
	u := seedUser(st, "n@example.com", domain.RoleUser, true, "h")

	if _, err := svc.NotifyUser(context.Background(), u.ID, "hi", true); err != nil {
		t.Fatalf("email failure must not fail the dispatch: %v", err)
	}
	rows, _ := svc.ListForUser(context.Background(), u.ID, 1, 20)
	if len(rows) != 1 || rows[0].Message != "hi" {
		t.Fatalf("expected notification row to persist, got %+v", rows)
	}
	if len(rt.pushes) != 1 {
		t.Fatalf("expected realtime push to have happened, got %d", len(rt.pushes))
	}
	if rep := svc.Reporter.(*stubReporter); len(rep.captured) != 1 {
		t.Fatalf("expected email failure to be reported once, got %d", len(rep.captured))
	}
}

func TestNotifyUserWithoutEmailFlagSkipsEmail(t *testing.T) {
	st := newMemoryStore()
	email := &stubEmailService{}
	svc := newNotificationService(st, &stubRealtime{}, email)
	u := seedUser(st, "n@example.com", domain.RoleUser, true, "h")

	if _, err := svc.NotifyUser(context.Background(), u.ID, "quiet", false); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(email.sent) != 0 {
		t.Fatalf("expected no email, got %+v", email.sent)
	}
}

func TestNotifyUserUnknownUser(t *testing.T) {
	st := newMemoryStore()
	svc := newNotificationService(st, &stubRealtime{}, &stubEmailService{})
	if _, err := svc.NotifyUser(context.Background(), uuid.New(), "hi", false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if st.notificationCount() != 0 {
		t.Fatalf("nothing should be persisted")
	}
}

func TestNotifyAllBroadcastsAndEmailsSubscribers(t *testing.T) {
	st := newMemoryStore()
	rt := &stubRealtime{err: errors.New("hub closed")}
	email := &stubEmailService{}
	svc := newNotificationService(st, rt, email)

	a := seedUser(st, "a@example.com", domain.RoleUser, true, "h")
	seedUser(st, "b@example.com", domain.RoleUser, true, "h")
	c := seedUser(st, "c@example.com", domain.RoleUser, true, "h")
	ctx := context.Background()
	for _, id := range []uuid.UUID{a.ID, c.ID} {
		if err := svc.SetEmailPreference(ctx, id, true); err != nil {
			t.Fatalf("set preference: %v", err)
		}
	}

	n, err := svc.NotifyAll(ctx, "maintenance tonight", true)
	if err != nil {
		t.Fatalf("notify all: %v", err)
	}
	if n.UserID != nil {
		t.Fatalf("broadcast row must have no target")
	}
	if len(rt.pushes) != 1 || !rt.pushes[0].broadcast {
		t.Fatalf("expected one broadcast, got %+v", rt.pushes)
	}
	if len(email.sent) != 2 {
		t.Fatalf("expected two subscriber emails, got %+v", email.sent)
	}
	for _, e := range email.sent {
		if e.subject != SubjectBroadcastNotification || e.to == "b@example.com" {
			t.Fatalf("unexpected email: %+v", e)
		}
	}
}

func TestListForUserPagination(t *testing.T) {
	st := newMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	svc := newNotificationService(st, &stubRealtime{}, &stubEmailService{})
	svc.Now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	}
	u := seedUser(st, "p@example.com", domain.RoleUser, true, "h")
	ctx := context.Background()
	for n := 0; n < 25; n++ {
		if _, err := svc.NotifyUser(ctx, u.ID, fmt.Sprintf("m%02d", n), false); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	first, err := svc.ListForUser(ctx, u.ID, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 20 || first[0].Message != "m24" {
		t.Fatalf("expected default page of 20 newest first, got %d starting %q", len(first), first[0].Message)
	}
	second, _ := svc.ListForUser(ctx, u.ID, 2, 20)
	if len(second) != 5 || second[4].Message != "m00" {
		t.Fatalf("unexpected second page: %d", len(second))
	}
	capped, _ := svc.ListForUser(ctx, u.ID, 1, 1000)
	if len(capped) != 25 {
		t.Fatalf("expected all 25 under the cap, got %d", len(capped))
	}
}

// Mark-read and delete do not check who owns the notification.
func TestMarkReadAndDeleteArePermissive(t *testing.T) {
	st := newMemoryStore()
	svc := newNotificationService(st, &stubRealtime{}, &stubEmailService{})
	owner := seedUser(st, "owner@example.com", domain.RoleUser, true, "h")
	ctx := context.Background()

	n, err := svc.NotifyUser(ctx, owner.ID, "private", false)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := svc.MarkRead(ctx, n.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	rows, _ := svc.ListForUser(ctx, owner.ID, 1, 10)
	if !rows[0].Read {
		t.Fatalf("expected read flag set")
	}
	if err := svc.Delete(ctx, n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, n.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if err := svc.MarkRead(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.SetEmailPreference(ctx, uuid.New(), true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}
