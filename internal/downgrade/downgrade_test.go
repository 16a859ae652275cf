package downgrade

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"estate_bot/internal/kv"
	"estate_bot/internal/model"
	"estate_bot/internal/render"
	"estate_bot/internal/storage"
)

type sentText struct {
	ChatID int64
	Text   string
}

type mockNotifier struct {
	sent []sentText
	err  error
}

func (m *mockNotifier) SendText(_ context.Context, chatID int64, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentText{ChatID: chatID, Text: text})
	return nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

var today = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*storage.Store, *testClock) {
	t.Helper()
	backend, err := kv.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	clock := &testClock{now: today}
	s := storage.New(backend)
	s.SetClock(clock.Now)
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

// seed creates subscriptions for: 1 (long), 2 (expires in two days), 3 (expired four days ago).
func seed(t *testing.T, s *storage.Store, clock *testClock) {
	t.Helper()
	ctx := context.Background()
	for userID, days := range map[int64]int{1: 30, 2: 2} {
		if _, err := s.RenewSubscription(ctx, userID, days); err != nil {
			t.Fatalf("renew %d: %v", userID, err)
		}
	}
	clock.now = today.AddDate(0, 0, -5)
	if _, err := s.RenewSubscription(ctx, 3, 1); err != nil {
		t.Fatalf("renew 3: %v", err)
	}
	clock.now = today
}

func newTestJob(s *storage.Store, clock *testClock, n Notifier) *Job {
	j := New(s, n, slog.New(slog.NewTextHandler(io.Discard, nil)))
	j.SetClock(clock.Now)
	return j
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)
	seed(t, s, clock)
	notifier := &mockNotifier{}

	got := newTestJob(s, clock, notifier).Run(ctx)

	want := map[string]int{"expired soon": 1, "downgraded": 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("counters mismatch (-want +got):\n%s", diff)
	}

	wantSent := []sentText{
		{ChatID: 2, Text: render.Text(model.LangEN, "subscription.expiring")},
		{ChatID: 3, Text: render.Text(model.LangEN, "subscription.downgraded")},
	}
	if diff := cmp.Diff(wantSent, notifier.sent); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}

	indexed, err := s.ListIndexedSubscriptions(ctx)
	if err != nil {
		t.Fatalf("list indexed: %v", err)
	}
	ids := make([]int64, 0, len(indexed))
	for _, sub := range indexed {
		ids = append(ids, sub.UserID)
	}
	if diff := cmp.Diff([]int64{1, 2}, ids); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}

	stopped, err := s.GetSubscription(ctx, 3)
	if err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if diff := cmp.Diff(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), stopped.ExpiredAt); diff != "" {
		t.Errorf("expiry mismatch (-want +got):\n%s", diff)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)
	seed(t, s, clock)
	j := newTestJob(s, clock, &mockNotifier{})

	j.Run(ctx)
	got := j.Run(ctx)

	want := map[string]int{"expired soon": 1, "downgraded": 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("counters mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSendFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)
	seed(t, s, clock)

	got := newTestJob(s, clock, &mockNotifier{err: errors.New("Forbidden: bot was blocked by the user")}).Run(ctx)

	want := map[string]int{"expired soon": 1, "downgraded": 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("counters mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUsesSubscriberLanguage(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)
	if _, err := s.RenewSubscription(ctx, 7, 1); err != nil {
		t.Fatalf("renew: %v", err)
	}
	ru := model.LangRU
	if _, err := s.UpdateFilter(ctx, 7, model.FilterUpdate{Lang: &ru}); err != nil {
		t.Fatalf("update filter: %v", err)
	}
	notifier := &mockNotifier{}

	newTestJob(s, clock, notifier).Run(ctx)

	want := []sentText{{ChatID: 7, Text: render.Text(model.LangRU, "subscription.expiring")}}
	if diff := cmp.Diff(want, notifier.sent); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}
