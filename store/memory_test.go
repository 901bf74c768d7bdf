package store

import (
	"context"
	"testing"

	"github.com/rushteam/matchkit/core"
)

func TestMemoryStoreGetSet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want store not found", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want %q", got, "v")
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after delete error = %v, want store not found", err)
	}
}

func TestMemoryStoreBatch(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	kvs := map[string][]byte{"a": []byte("1"), "b": []byte("2")}
	if err := s.BatchSet(ctx, kvs); err != nil {
		t.Fatalf("BatchSet() error = %v", err)
	}

	got, err := s.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("BatchGet() error = %v", err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("BatchGet() = %v, want a=1 b=2", got)
	}
}

func TestMemoryStoreZSet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	for member, score := range map[string]float64{"v1": 1, "v2": 2, "v3": 3} {
		if err := s.ZAdd(ctx, "versions", score, member); err != nil {
			t.Fatalf("ZAdd() error = %v", err)
		}
	}

	got, err := s.ZRange(ctx, "versions", 0, -1)
	if err != nil {
		t.Fatalf("ZRange() error = %v", err)
	}
	want := []string{"v3", "v2", "v1"} // score 降序
	if len(got) != len(want) {
		t.Fatalf("ZRange() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ZRange()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	score, err := s.ZScore(ctx, "versions", "v2")
	if err != nil {
		t.Fatalf("ZScore() error = %v", err)
	}
	if score != 2 {
		t.Errorf("ZScore() = %v, want 2", score)
	}
	if _, err := s.ZScore(ctx, "versions", "v9"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore(missing) error = %v, want store not found", err)
	}
}

func TestMemoryStoreHash(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.HSet(ctx, "participants", "u1", []byte("control")); err != nil {
		t.Fatalf("HSet() error = %v", err)
	}
	if err := s.HSet(ctx, "participants", "u2", []byte("treatment")); err != nil {
		t.Fatalf("HSet() error = %v", err)
	}

	got, err := s.HGet(ctx, "participants", "u1")
	if err != nil {
		t.Fatalf("HGet() error = %v", err)
	}
	if string(got) != "control" {
		t.Errorf("HGet() = %q, want control", got)
	}

	all, err := s.HGetAll(ctx, "participants")
	if err != nil {
		t.Fatalf("HGetAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("HGetAll() returned %d fields, want 2", len(all))
	}

	if _, err := s.HGet(ctx, "participants", "u9"); !core.IsStoreNotFound(err) {
		t.Errorf("HGet(missing) error = %v, want store not found", err)
	}
}
