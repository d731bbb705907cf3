package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/docstore"
	sberrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/errors"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/model"
)

// recordingGetter 는 조회된 키를 기록한다.
type recordingGetter struct {
	inner docstore.Getter
	mu    sync.Mutex
	keys  []string
}

func (g *recordingGetter) Get(ctx context.Context, collection, id string) (docstore.Snapshot, error) {
	g.mu.Lock()
	g.keys = append(g.keys, collection+"/"+id)
	g.mu.Unlock()
	return g.inner.Get(ctx, collection, id)
}

func seedStore(t *testing.T) *docstore.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	seed := []struct {
		collection, id string
		data           docstore.Data
	}{
		{model.CollectionUsernames, "alice", docstore.Data{"uid": "u-alice", "email": "alice@example.com"}},
		{model.CollectionUsernames, "bob", docstore.Data{"uid": "u-bob"}},
		{model.CollectionUsers, "u-bob", docstore.Data{"email": "bob@example.com", "username": "Bob"}},
		{model.CollectionUsernames, "carol", docstore.Data{"uid": "u-carol"}},
		{model.CollectionUsers, "u-carol", docstore.Data{"username": "carol"}},
		{model.CollectionUsernames, "dave", docstore.Data{"uid": "u-dave"}},
		{model.CollectionUsernames, "élodie", docstore.Data{"email": "elodie@example.com"}},
	}
	for _, s := range seed {
		if err := store.Set(ctx, s.collection, s.id, s.data, docstore.SetOptions{}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	return store
}

func TestResolve_EmailPassesThroughWithoutLookup(t *testing.T) {
	getter := &recordingGetter{inner: seedStore(t)}
	r := NewResolver(getter)

	got, err := r.Resolve(context.Background(), "  Alice@Example.COM ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Alice@Example.COM" {
		t.Fatalf("expected trimmed input unchanged, got %q", got)
	}
	if len(getter.keys) != 0 {
		t.Fatalf("expected no lookups, got %v", getter.keys)
	}
}

func TestResolve_UsernameIsCaseInsensitive(t *testing.T) {
	getter := &recordingGetter{inner: seedStore(t)}
	r := NewResolver(getter)
	ctx := context.Background()

	for _, id := range []string{"Alice", "alice", " ALICE "} {
		got, err := r.Resolve(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", id, err)
		}
		if got != "alice@example.com" {
			t.Fatalf("unexpected email for %q: %q", id, got)
		}
	}
	for _, key := range getter.keys {
		if key != "usernames/alice" {
			t.Fatalf("unexpected lookup key: %s", key)
		}
	}
}

func TestResolve_UnicodeLowercase(t *testing.T) {
	r := NewResolver(seedStore(t))
	got, err := r.Resolve(context.Background(), "ÉLODIE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "elodie@example.com" {
		t.Fatalf("unexpected email: %q", got)
	}
}

func TestResolve_FallsBackToUserProfile(t *testing.T) {
	r := NewResolver(seedStore(t))
	got, err := r.Resolve(context.Background(), "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "bob@example.com" {
		t.Fatalf("unexpected email: %q", got)
	}
}

func TestResolve_Errors(t *testing.T) {
	r := NewResolver(seedStore(t))
	ctx := context.Background()

	tests := []struct {
		name       string
		identifier string
		check      func(error) bool
		message    string
	}{
		{
			name:       "empty",
			identifier: "",
			check:      func(err error) bool { var e sberrors.InvalidArgumentError; return errors.As(err, &e) },
			message:    "Identifier is required",
		},
		{
			name:       "whitespace",
			identifier: "   ",
			check:      func(err error) bool { var e sberrors.InvalidArgumentError; return errors.As(err, &e) },
			message:    "Identifier is required",
		},
		{
			name:       "unknown username",
			identifier: " ghost ",
			check:      func(err error) bool { var e sberrors.NotFoundError; return errors.As(err, &e) },
			message:    `Username "ghost" not found`,
		},
		{
			name:       "profile without email",
			identifier: "carol",
			check:      func(err error) bool { var e sberrors.NotFoundError; return errors.As(err, &e) },
			message:    `Username "carol" has no associated email`,
		},
		{
			name:       "missing profile",
			identifier: "Dave",
			check:      func(err error) bool { var e sberrors.NotFoundError; return errors.As(err, &e) },
			message:    `Username "Dave" has no associated email`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(ctx, tt.identifier)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.check(err) {
				t.Fatalf("unexpected error type: %T %v", err, err)
			}
			if err.Error() != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func TestResolve_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("permission denied")
	store := docstore.NewMemoryStore(docstore.WithFault(func(op, collection, _ string) error {
		if op == docstore.OpGet && collection == model.CollectionUsernames {
			return boom
		}
		return nil
	}))

	_, err := NewResolver(store).Resolve(context.Background(), "alice")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
	if sberrors.IsExpectedUserBehavior(err) {
		t.Fatal("store failure must not be classified as user error")
	}
}

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("  MiXeD "); got != "mixed" {
		t.Fatalf("unexpected key: %q", got)
	}
	if strings.Contains(NormalizeUsername("A B"), "A") {
		t.Fatal("expected lowercase")
	}
}
