package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedExam struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheOrExecute(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (any, error) {
		calls++
		return &cachedExam{ID: 7, Title: "Algebra"}, nil
	}

	var first cachedExam
	if err := cm.Exam.CacheOrExecute(ctx, ExamKey(7), &first, time.Minute, fetch); err != nil {
		t.Fatalf("first CacheOrExecute() error = %v", err)
	}
	if !mr.Exists("exam:id:7") {
		t.Fatal("expected exam:id:7 to be stored")
	}

	var second cachedExam
	if err := cm.Exam.CacheOrExecute(ctx, ExamKey(7), &second, time.Minute, fetch); err != nil {
		t.Fatalf("second CacheOrExecute() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if second != first || second.Title != "Algebra" {
		t.Errorf("cached value = %+v, want %+v", second, first)
	}

	mr.FastForward(2 * time.Minute)
	var third cachedExam
	if err := cm.Exam.CacheOrExecute(ctx, ExamKey(7), &third, time.Minute, fetch); err != nil {
		t.Fatalf("third CacheOrExecute() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("expired entry should refetch, calls = %d", calls)
	}
}

func TestCacheOrExecute_FetchErrorIsReturned(t *testing.T) {
	cm, mr := newTestManager(t)
	sentinel := errors.New("boom")

	var dest cachedExam
	err := cm.Exam.CacheOrExecute(context.Background(), ExamKey(1), &dest, time.Minute, func() (any, error) {
		return nil, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want %v", err, sentinel)
	}
	if mr.Exists("exam:id:1") {
		t.Error("failed fetch must not be cached")
	}
}

func TestCacheHelper_WithoutRedis(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	if cm.Exam.Available() {
		t.Fatal("nil client should not be available")
	}
	if err := cm.Exam.Get(ctx, "x", &cachedExam{}); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() error = %v, want ErrCacheNotAvailable", err)
	}
	if err := cm.Exam.Set(ctx, "x", cachedExam{}, time.Minute); err != nil {
		t.Errorf("Set() should degrade silently, got %v", err)
	}

	calls := 0
	var dest cachedExam
	err := cm.Exam.CacheOrExecute(ctx, "x", &dest, time.Minute, func() (any, error) {
		calls++
		return cachedExam{ID: 3}, nil
	})
	if err != nil || dest.ID != 3 || calls != 1 {
		t.Errorf("CacheOrExecute() = %+v, %v (calls %d)", dest, err, calls)
	}
	if err := cm.HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestFlushDocumentCaches(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for _, key := range []string{"exam:id:1", "exam:id:2", "question:id:5", "question:other:1", "user:id:u1"} {
		if err := mr.Set(key, "{}"); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}

	FlushDocumentCaches(ctx, cm)

	tests := []struct {
		key  string
		want bool
	}{
		{"exam:id:1", false},
		{"exam:id:2", false},
		{"question:id:5", false},
		{"question:other:1", true},
		{"user:id:u1", true},
	}
	for _, tt := range tests {
		if got := mr.Exists(tt.key); got != tt.want {
			t.Errorf("Exists(%s) = %v, want %v", tt.key, got, tt.want)
		}
	}

	// Without Redis the flush is a no-op
	FlushDocumentCaches(ctx, NewCacheManager(nil))
}

func TestInvalidateExamCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	if err := cm.Exam.Set(ctx, ExamKey(9), cachedExam{ID: 9}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	InvalidateExamCache(ctx, cm, 9)
	if mr.Exists("exam:id:9") {
		t.Error("exam:id:9 should be removed")
	}
	if err := cm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
