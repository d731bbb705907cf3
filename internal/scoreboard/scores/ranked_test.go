package scores

import (
	"slices"
	"testing"
)

type item struct {
	name  string
	score int64
}

func itemKey(i item) int64 { return i.score }

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out
}

func TestRanked_InsertAfterEqualScores(t *testing.T) {
	r := NewRanked(5, itemKey, []item{{"a", 50}, {"b", 30}})
	r.Insert(item{"c", 50})
	r.Insert(item{"d", 30})

	want := []string{"a", "c", "b", "d"}
	if got := names(r.Items()); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRanked_Capacity(t *testing.T) {
	r := NewRanked(3, itemKey, []item{{"a", 30}, {"b", 20}, {"c", 10}})

	if r.Insert(item{"low", 5}) {
		t.Fatal("expected low score to be rejected")
	}
	if r.Insert(item{"tie", 10}) {
		t.Fatal("expected tie with last entry to be rejected when full")
	}
	if !r.Insert(item{"mid", 25}) {
		t.Fatal("expected mid score to be retained")
	}

	want := []string{"a", "mid", "b"}
	if got := names(r.Items()); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRanked_NormalizesInput(t *testing.T) {
	r := NewRanked(2, itemKey, []item{{"x", 1}, {"y", 3}, {"z", 2}})
	want := []string{"y", "z"}
	if got := names(r.Items()); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRanked_ItemsIsCopy(t *testing.T) {
	r := NewRanked(2, itemKey, []item{{"x", 1}})
	items := r.Items()
	items[0].name = "mutated"
	if r.Items()[0].name != "x" {
		t.Fatal("Items must return a copy")
	}
}
