package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// flakyStore wraps a Store and fails selected operations.
type flakyStore struct {
	Store
	getErr    error
	setErr    error
	deletes   int
	deleteErr error
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	return s.Store.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.Store.Set(ctx, key, value, ttl)
}

func (s *flakyStore) Delete(ctx context.Context, key string) error {
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Store.Delete(ctx, key)
}

type testPayload struct {
	Names []string `json:"names"`
}

func TestResultMissGeneratesAndStores(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	calls := 0
	generate := func(context.Context) (testPayload, error) {
		calls++
		return testPayload{Names: []string{"tomato", "cheese"}}, nil
	}

	got, hit, err := Result(ctx, store, "test", "k1", time.Minute, generate)
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if hit {
		t.Fatalf("expected miss on cold cache")
	}
	if calls != 1 {
		t.Fatalf("expected one generation call, got %d", calls)
	}
	if len(got.Names) != 2 {
		t.Fatalf("unexpected payload: %#v", got)
	}

	// Second call must be served from the cache.
	got, hit, err = Result(ctx, store, "test", "k1", time.Minute, generate)
	if err != nil {
		t.Fatalf("Result on warm cache failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected hit on warm cache")
	}
	if calls != 1 {
		t.Fatalf("expected no second generation call, got %d", calls)
	}
	if got.Names[0] != "tomato" {
		t.Fatalf("unexpected cached payload: %#v", got)
	}
}

func TestResultRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	want := testPayload{Names: []string{"a", "b"}}
	raw, _ := json.Marshal(want)
	if err := store.Set(ctx, "k", raw, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, hit, err := Result(ctx, store, "test", "k", time.Minute,
		func(context.Context) (testPayload, error) {
			t.Fatalf("generation must not run on a hit")
			return testPayload{}, nil
		})
	if err != nil || !hit {
		t.Fatalf("expected clean hit: hit=%v err=%v", hit, err)
	}
	if got.Names[1] != "b" {
		t.Fatalf("round-trip mismatch: %#v", got)
	}
}

func TestResultSelfHealsCorruptEntry(t *testing.T) {
	inner := NewMemoryStore(time.Minute)
	defer inner.Close()
	store := &flakyStore{Store: inner}
	ctx := context.Background()

	if err := inner.Set(ctx, "k", []byte("{not json"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	calls := 0
	got, hit, err := Result(ctx, store, "test", "k", time.Minute,
		func(context.Context) (testPayload, error) {
			calls++
			return testPayload{Names: []string{"fresh"}}, nil
		})
	if err != nil {
		t.Fatalf("corrupt entry must not surface an error, got %v", err)
	}
	if hit {
		t.Fatalf("corrupt entry must count as a miss")
	}
	if calls != 1 {
		t.Fatalf("expected a fresh generation call, got %d", calls)
	}
	if store.deletes != 1 {
		t.Fatalf("expected corrupt key to be purged once, got %d deletes", store.deletes)
	}
	if got.Names[0] != "fresh" {
		t.Fatalf("unexpected payload: %#v", got)
	}

	// The fresh value replaced the garbage.
	raw, ok, _ := inner.Get(ctx, "k")
	if !ok {
		t.Fatalf("expected regenerated value in store")
	}
	var stored testPayload
	if jsonErr := json.Unmarshal(raw, &stored); jsonErr != nil {
		t.Fatalf("stored value not decodable: %v", jsonErr)
	}
}

func TestResultGetErrorDegradesToMiss(t *testing.T) {
	inner := NewMemoryStore(time.Minute)
	defer inner.Close()
	store := &flakyStore{Store: inner, getErr: errors.New("backend down")}
	ctx := context.Background()

	calls := 0
	_, hit, err := Result(ctx, store, "test", "k", time.Minute,
		func(context.Context) (testPayload, error) {
			calls++
			return testPayload{Names: []string{"x"}}, nil
		})
	if err != nil {
		t.Fatalf("read failure must degrade, not fail: %v", err)
	}
	if hit || calls != 1 {
		t.Fatalf("expected degraded miss with one generation, hit=%v calls=%d", hit, calls)
	}
}

func TestResultSetErrorStillReturnsValue(t *testing.T) {
	inner := NewMemoryStore(time.Minute)
	defer inner.Close()
	store := &flakyStore{Store: inner, setErr: errors.New("backend down")}
	ctx := context.Background()

	got, hit, err := Result(ctx, store, "test", "k", time.Minute,
		func(context.Context) (testPayload, error) {
			return testPayload{Names: []string{"kept"}}, nil
		})
	if err != nil {
		t.Fatalf("write failure must not fail the request: %v", err)
	}
	if hit {
		t.Fatalf("expected miss")
	}
	if got.Names[0] != "kept" {
		t.Fatalf("generated value lost: %#v", got)
	}
}

func TestResultGenerateErrorLeavesStoreUntouched(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	genErr := errors.New("model unavailable")
	_, _, err := Result(ctx, store, "test", "k", time.Minute,
		func(context.Context) (testPayload, error) {
			return testPayload{}, genErr
		})
	if !errors.Is(err, genErr) {
		t.Fatalf("expected generation error to surface, got %v", err)
	}

	// No negative caching.
	if _, hit, _ := store.Get(ctx, "k"); hit {
		t.Fatalf("failure must not be cached")
	}
	if store.Len() != 0 {
		t.Fatalf("store must stay empty, has %d items", store.Len())
	}
}

func TestResultExpiredEntryIsMiss(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	raw, _ := json.Marshal(testPayload{Names: []string{"stale"}})
	if err := store.Set(ctx, "k", raw, 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	calls := 0
	_, hit, err := Result(ctx, store, "test", "k", time.Minute,
		func(context.Context) (testPayload, error) {
			calls++
			return testPayload{Names: []string{"fresh"}}, nil
		})
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if hit || calls != 1 {
		t.Fatalf("expired entry must behave as a miss, hit=%v calls=%d", hit, calls)
	}
}
