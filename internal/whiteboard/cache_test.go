package whiteboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/clearpaw/vetclinic-platform/internal/waitinglist"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCache(rdb, 30*time.Second)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	filter := Filter{Show: ShowWaiting}
	rows := []Row{{Entry: waitinglist.Entry{ID: "e1", ClinicID: "clinic-1"}, Sno: 1, PatientName: "Biscuit"}}

	if _, ok := cache.Get(ctx, "clinic-1", day, filter); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	if err := cache.Set(ctx, "clinic-1", day, filter, rows); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := cache.Get(ctx, "clinic-1", day, filter)
	if !ok || len(got) != 1 || got[0].PatientName != "Biscuit" || got[0].Sno != 1 {
		t.Fatalf("unexpected cached rows: %+v ok=%v", got, ok)
	}
}

func TestCacheFilterScoping(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if err := cache.Set(ctx, "clinic-1", day, Filter{Show: ShowWaiting}, []Row{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Get(ctx, "clinic-1", day, Filter{Show: ShowAttending}); ok {
		t.Fatal("different filter must not share a cache slot")
	}
	if _, ok := cache.Get(ctx, "clinic-2", day, Filter{Show: ShowWaiting}); ok {
		t.Fatal("different clinic must not share a cache slot")
	}
}

func TestCacheInvalidateOrphansAllViews(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	for _, f := range []Filter{{Show: ShowAll}, {Show: ShowWaiting}, {Show: ShowAll, Query: "biscuit"}} {
		if err := cache.Set(ctx, "clinic-1", day, f, []Row{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := cache.Invalidate(ctx, "clinic-1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	for _, f := range []Filter{{Show: ShowAll}, {Show: ShowWaiting}, {Show: ShowAll, Query: "biscuit"}} {
		if _, ok := cache.Get(ctx, "clinic-1", day, f); ok {
			t.Fatalf("filter %+v still cached after invalidation", f)
		}
	}
}
