package docstore

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

type scoreDoc struct {
	UID         string    `json:"uid"`
	TotalScore  int64     `json:"totalScore"`
	LastUpdated time.Time `json:"lastUpdated"`
	Scores      []struct {
		Score int64 `json:"score"`
	} `json:"scores"`
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResolveServerTimestamps_Nested(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	in := Data{
		"lastUpdated": ServerTimestamp,
		"meta":        map[string]any{"at": ServerTimestamp},
		"list":        []any{ServerTimestamp, "x"},
		"plain":       1,
	}

	out := ResolveServerTimestamps(in, now)
	if out["lastUpdated"] != now {
		t.Fatalf("expected top-level timestamp resolved, got %v", out["lastUpdated"])
	}
	if out["meta"].(map[string]any)["at"] != now {
		t.Fatalf("expected nested timestamp resolved, got %v", out["meta"])
	}
	if out["list"].([]any)[0] != now {
		t.Fatalf("expected slice timestamp resolved, got %v", out["list"])
	}
	if in["lastUpdated"] != ServerTimestamp {
		t.Fatal("input must not be modified")
	}
}

func TestNormalize_RejectsUnresolvedSentinel(t *testing.T) {
	if _, err := Normalize(Data{"at": ServerTimestamp}); err == nil {
		t.Fatal("expected error for unresolved sentinel")
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "users", "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_SetMergePreservesOtherFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, "userStats", "u1", Data{"uid": "u1", "badge": "gold", "totalScore": 10}, SetOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Set(ctx, "userStats", "u1", Data{"totalScore": 25}, SetOptions{Merge: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := store.Get(ctx, "userStats", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Data["badge"] != "gold" || snap.Data["totalScore"] != float64(25) {
		t.Fatalf("unexpected merged doc: %v", snap.Data)
	}

	if err := store.Set(ctx, "userStats", "u1", Data{"uid": "u1"}, SetOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, _ = store.Get(ctx, "userStats", "u1")
	if _, ok := snap.Data["badge"]; ok {
		t.Fatalf("expected replace without merge, got %v", snap.Data)
	}

	if sets, adds := store.Writes(); sets != 3 || adds != 0 {
		t.Fatalf("unexpected write counters sets=%d adds=%d", sets, adds)
	}
}

func TestMemoryStore_ServerTimestampAndDecode(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 3, 4, 5, 678000000, time.UTC)
	store := NewMemoryStore(WithClock(fixedClock(now)))

	err := store.Set(ctx, "userStats", "u1", Data{
		"uid":         "u1",
		"totalScore":  int64(585),
		"lastUpdated": ServerTimestamp,
		"scores":      []map[string]any{{"score": 100}, {"score": 90}},
	}, SetOptions{Merge: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := store.Get(ctx, "userStats", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := DecodeAs[scoreDoc](snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.TotalScore != 585 || len(doc.Scores) != 2 || doc.Scores[1].Score != 90 {
		t.Fatalf("unexpected decoded doc: %+v", doc)
	}
	if !doc.LastUpdated.Equal(now) {
		t.Fatalf("expected lastUpdated %v, got %v", now, doc.LastUpdated)
	}
}

func TestMemoryStore_AddAndList(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	store := NewMemoryStore(WithClock(func() time.Time { return now }))

	for i, score := range []int{10, 20, 30} {
		now = base.Add(time.Duration(i) * time.Hour)
		ref, err := store.Add(ctx, "leaderboard", Data{"score": score, "timestamp": ServerTimestamp})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID == "" || ref.Collection != "leaderboard" {
			t.Fatalf("unexpected ref: %+v", ref)
		}
	}

	all, err := store.List(ctx, "leaderboard", Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 || all[0].Data["score"] != float64(10) {
		t.Fatalf("expected 3 entries oldest first, got %v", all)
	}

	recent, err := store.List(ctx, "leaderboard", Query{CreatedAfter: base, Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 1 || recent[0].Data["score"] != float64(20) {
		t.Fatalf("unexpected filtered list: %v", recent)
	}
}

func TestMemoryStore_Fault(t *testing.T) {
	boom := errors.New("unavailable")
	store := NewMemoryStore(WithFault(func(op, collection, _ string) error {
		if op == OpAdd && collection == "leaderboard" {
			return boom
		}
		return nil
	}))

	if _, err := store.Add(context.Background(), "leaderboard", Data{"score": 1}); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if _, adds := store.Writes(); adds != 0 {
		t.Fatalf("expected no adds, got %d", adds)
	}
}

func TestMemoryStore_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, "users", "u1", Data{"email": "a@b.c"}, SetOptions{})

	snap, _ := store.Get(ctx, "users", "u1")
	snap.Data["email"] = "changed"

	again, _ := store.Get(ctx, "users", "u1")
	if again.Data["email"] != "a@b.c" {
		t.Fatalf("stored doc mutated through snapshot: %v", again.Data)
	}
}

func TestMemoryStore_ListOrderByDesc(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	store := NewMemoryStore(WithClock(func() time.Time { return now }))

	docs := []Data{
		{"uid": "a", "score": 20},
		{"uid": "b", "score": 50},
		{"uid": "c"},
		{"uid": "d", "score": 20},
		{"uid": "e", "score": "high"},
	}
	for i, d := range docs {
		now = base.Add(time.Duration(i) * time.Minute)
		if _, err := store.Add(ctx, "leaderboard", d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := store.List(ctx, "leaderboard", Query{OrderByDesc: "score", Limit: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var uids []string
	for _, snap := range got {
		uids = append(uids, snap.Data["uid"].(string))
	}
	if want := []string{"b", "a", "d", "c"}; !slices.Equal(uids, want) {
		t.Fatalf("expected %v, got %v", want, uids)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Set(ctx, "credentials", "a@b.c", Data{"uid": "u1"}, SetOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Delete(ctx, "credentials", "a@b.c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, "credentials", "a@b.c"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "credentials", "missing"); err != nil {
		t.Fatalf("deleting a missing document must succeed, got %v", err)
	}
}
