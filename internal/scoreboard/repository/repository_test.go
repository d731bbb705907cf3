package repository

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/docstore"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, sqlDB, err := Open(context.Background(), OpenConfig{Driver: DriverSQLite, DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := New(db)
	if err := repo.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return repo
}

func TestRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.Get(context.Background(), "usernames", "ghost")
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_SetMerge(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if err := repo.Set(ctx, "userStats", "u1", docstore.Data{
		"uid": "u1", "username": "alice", "totalScore": 50,
	}, docstore.SetOptions{Merge: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(time.Minute)
	if err := repo.Set(ctx, "userStats", "u1", docstore.Data{
		"totalScore": 80, "lastUpdated": docstore.ServerTimestamp,
	}, docstore.SetOptions{Merge: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := repo.Get(ctx, "userStats", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Data["username"] != "alice" || snap.Data["totalScore"] != float64(80) {
		t.Fatalf("unexpected merged data: %v", snap.Data)
	}

	var doc struct {
		LastUpdated time.Time `json:"lastUpdated"`
	}
	if err := docstore.Decode(snap.Data, &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.LastUpdated.Equal(now) {
		t.Fatalf("expected lastUpdated %v, got %v", now, doc.LastUpdated)
	}
}

func TestRepository_SetReplace(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_ = repo.Set(ctx, "users", "u1", docstore.Data{"email": "a@example.com", "username": "alice"}, docstore.SetOptions{})
	if err := repo.Set(ctx, "users", "u1", docstore.Data{"email": "b@example.com"}, docstore.SetOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := repo.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := snap.Data["username"]; ok || snap.Data["email"] != "b@example.com" {
		t.Fatalf("expected replaced document, got %v", snap.Data)
	}
}

func TestRepository_AddAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	repo.now = func() time.Time { return now }

	ids := map[string]bool{}
	for i := range 3 {
		now = base.Add(time.Duration(i) * 24 * time.Hour)
		ref, err := repo.Add(ctx, "leaderboard", docstore.Data{"uid": "u1", "score": (i + 1) * 10, "timestamp": docstore.ServerTimestamp})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids[ref.ID] = true
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 distinct ids, got %d", len(ids))
	}

	all, err := repo.List(ctx, "leaderboard", docstore.Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 || all[0].Data["score"] != float64(10) || all[2].Data["score"] != float64(30) {
		t.Fatalf("unexpected list order: %v", all)
	}

	recent, err := repo.List(ctx, "leaderboard", docstore.Query{CreatedAfter: base.Add(12 * time.Hour)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent entries, got %d", len(recent))
	}

	limited, err := repo.List(ctx, "leaderboard", docstore.Query{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(limited))
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, _, err := Open(context.Background(), OpenConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestRepository_ListOrderByDesc(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	repo.now = func() time.Time { return now }

	docs := []docstore.Data{
		{"uid": "a", "score": 20},
		{"uid": "b", "score": 50},
		{"uid": "c"},
		{"uid": "d", "score": 20},
		{"uid": "e", "score": 7.5},
	}
	for i, d := range docs {
		now = base.Add(time.Duration(i) * time.Minute)
		if _, err := repo.Add(ctx, "leaderboard", d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := repo.List(ctx, "leaderboard", docstore.Query{OrderByDesc: "score", Limit: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var uids []string
	for _, snap := range got {
		uids = append(uids, snap.Data["uid"].(string))
	}
	if want := []string{"b", "a", "d", "e"}; !slices.Equal(uids, want) {
		t.Fatalf("expected %v, got %v", want, uids)
	}

	if _, err := repo.List(ctx, "leaderboard", docstore.Query{OrderByDesc: "score'; --"}); err == nil {
		t.Fatal("expected error for unsafe order field")
	}
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	if err := repo.Set(ctx, "credentials", "a@b.c", docstore.Data{"uid": "u1"}, docstore.SetOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.Delete(ctx, "credentials", "a@b.c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Get(ctx, "credentials", "a@b.c"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "credentials", "missing"); err != nil {
		t.Fatalf("deleting a missing document must succeed, got %v", err)
	}
}
