package memory

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"smartspend/internal/storage"
)

func strPtr(s string) *string { return &s }

func TestAddAssignsIDAndOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, err := s.Add(ctx, storage.Record{Title: "old", Amount: 1, Category: "FOOD", Timestamp: 100})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := s.Add(ctx, storage.Record{ID: "fixed", Title: "new", Amount: 2, Category: "FOOD", Timestamp: 200}); err != nil {
		t.Fatalf("add: %v", err)
	}
	all, _ := s.All(ctx)
	if len(all) != 2 || all[0].ID != "fixed" {
		t.Fatalf("expected newest first, got %+v", all)
	}
}

func TestUpdateDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Update(ctx, storage.Record{ID: "nope"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	r, _ := s.Add(ctx, storage.Record{Title: "x", Amount: 1, Category: "FOOD"})
	r.Title = "y"
	if _, err := s.Update(ctx, r); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Get(ctx, r.ID)
	if got.Title != "y" {
		t.Fatalf("expected updated title, got %q", got.Title)
	}
	if err := s.Delete(ctx, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	s := New(
		storage.Record{ID: "1", Title: "Taxi", Category: "TRAVEL", Amount: 10, Timestamp: 10},
		storage.Record{ID: "2", Title: "Lunch", Category: "FOOD", Amount: 20, Timestamp: 20, Notes: strPtr("with client")},
		storage.Record{ID: "3", Title: "Dinner", Category: "food", Amount: 30, Timestamp: 30},
	)

	byRange, _ := s.ByRange(ctx, 10, 20)
	if len(byRange) != 2 || byRange[0].ID != "2" {
		t.Fatalf("unexpected range result %+v", byRange)
	}
	byCat, _ := s.ByCategory(ctx, "Food")
	if len(byCat) != 2 {
		t.Fatalf("category match must ignore case, got %d", len(byCat))
	}
	both, _ := s.ByRangeAndCategory(ctx, 0, 25, "FOOD")
	if len(both) != 1 || both[0].ID != "2" {
		t.Fatalf("unexpected result %+v", both)
	}
	found, _ := s.Search(ctx, "CLIENT")
	if len(found) != 1 || found[0].ID != "2" {
		t.Fatalf("search should match notes, got %+v", found)
	}
	blank, _ := s.Search(ctx, "  ")
	if len(blank) != 0 {
		t.Fatalf("blank query must return nothing")
	}
	n, _ := s.CountByRange(ctx, 0, 30)
	if n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	all, _ := s.All(ctx)
	if len(all) != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestReturnsDefensiveCopies(t *testing.T) {
	ctx := context.Background()
	s := New(storage.Record{ID: "1", Title: "a", Notes: strPtr("orig")})
	got, _ := s.Get(ctx, "1")
	*got.Notes = "changed"
	again, _ := s.Get(ctx, "1")
	if *again.Notes != "orig" {
		t.Fatalf("store state leaked through returned record")
	}
}

func TestSubscribeDeliversCurrentThenLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New(storage.Record{ID: "seed", Timestamp: 1})

	ch, err := s.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	first := <-ch
	if len(first) != 1 || first[0].ID != "seed" {
		t.Fatalf("expected current snapshot first, got %+v", first)
	}

	// A slow subscriber only sees the newest snapshot.
	for i := 0; i < 5; i++ {
		if _, err := s.Add(ctx, storage.Record{Timestamp: int64(10 + i)}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	latest := <-ch
	if len(latest) != 6 {
		t.Fatalf("expected latest snapshot with 6 records, got %d", len(latest))
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("channel not closed after cancel")
		}
	}
}

func TestConcurrentWritesAreSerialized(t *testing.T) {
	ctx := context.Background()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Add(ctx, storage.Record{Title: "t", Amount: 1, Category: "FOOD", Timestamp: int64(i)})
		}(i)
	}
	wg.Wait()
	n, _ := s.CountByRange(ctx, 0, 100)
	if n != 50 {
		t.Fatalf("expected 50 records, got %d", n)
	}
}

func TestDemoRecords(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	recs := storage.DemoRecords(now, rand.New(rand.NewPCG(1, 2)))
	if len(recs) < 7 || len(recs) > 28 {
		t.Fatalf("unexpected record count %d", len(recs))
	}
	oldest := now.AddDate(0, 0, -7).UnixMilli()
	for _, r := range recs {
		if r.Timestamp < oldest || r.Timestamp > now.Add(12*time.Hour).UnixMilli() {
			t.Fatalf("record outside the last week: %+v", r)
		}
		if r.Amount <= 0 || r.ID == "" {
			t.Fatalf("invalid demo record %+v", r)
		}
	}
}
