package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache[T any](size int, ttl time.Duration) (*LRUCache[T], *fakeClock) {
	clk := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[T](size, ttl)
	c.now = clk.Now
	return c, clk
}

// TestLRUCacheEviction tests size-based eviction
func TestLRUCacheEviction(t *testing.T) {
	c, _ := newTestCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Set("key4", "value4")

	if _, found := c.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}
	for _, k := range []string{"key2", "key3", "key4"} {
		if _, found := c.Get(k); !found {
			t.Errorf("%s should still exist", k)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}
}

// TestLRUCacheRecency checks that a read protects an entry from eviction.
func TestLRUCacheRecency(t *testing.T) {
	c, _ := newTestCache[int](2, time.Hour)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, found := c.Get("b"); found {
		t.Error("b should have been evicted")
	}
	if v, found := c.Get("a"); !found || v != 1 {
		t.Errorf("a = %d, %v; want 1, true", v, found)
	}
}

// TestLRUCacheTTLExpiration tests time-based expiration
func TestLRUCacheTTLExpiration(t *testing.T) {
	c, clk := newTestCache[string](100, 10*time.Minute)

	c.Set("key1", "value1")
	if _, found := c.Get("key1"); !found {
		t.Fatal("key1 should exist immediately")
	}

	clk.Advance(11 * time.Minute)
	if _, found := c.Get("key1"); found {
		t.Error("key1 should have expired")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be removed on read, size = %d", c.Size())
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	c, clk := newTestCache[string](100, time.Minute)

	c.Set("old1", "x")
	c.Set("old2", "x")
	clk.Advance(30 * time.Second)
	c.Set("fresh", "x")
	clk.Advance(45 * time.Second)

	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired() = %d, want 2", n)
	}
	if c.Size() != 1 {
		t.Errorf("size = %d, want 1", c.Size())
	}
}

func TestLRUCacheStatsAndPurge(t *testing.T) {
	c, _ := newTestCache[string](10, time.Hour)
	c.Set("k", "v")
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Size != 1 {
		t.Errorf("stats = %+v", s)
	}

	c.Purge()
	if c.Size() != 0 {
		t.Errorf("size after purge = %d", c.Size())
	}
}

func TestMemoComputesOnce(t *testing.T) {
	m := NewMemo(NewLRUCache[int](10, time.Hour))

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	const n = 16
	var wg sync.WaitGroup
	results := make([]int, n)
	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			v, _, err := m.Do("k", compute)
			if err != nil {
				t.Error(err)
			}
			results[i] = v
		}(i)
	}
	for i := 0; i < n; i++ {
		<-started
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("compute called %d times, want 1", got)
	}
	for i, v := range results {
		if v != 42 {
			t.Errorf("result[%d] = %d", i, v)
		}
	}

	v, cached, err := m.Do("k", func() (int, error) { return 0, errors.New("must not run") })
	if err != nil || !cached || v != 42 {
		t.Errorf("Do after compute = %d, %v, %v", v, cached, err)
	}
}

func TestMemoDoesNotCacheErrors(t *testing.T) {
	m := NewMemo(NewLRUCache[int](10, time.Hour))
	boom := errors.New("boom")

	if _, _, err := m.Do("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	v, _, err := m.Do("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("retry = %d, %v", v, err)
	}
}

type countingCleaner struct{ n atomic.Int32 }

func (c *countingCleaner) CleanExpired() int {
	c.n.Add(1)
	return 1
}

func TestManagerCleanup(t *testing.T) {
	m := NewManager(nil)
	cc := &countingCleaner{}
	m.Register(cc)

	if got := m.Sweep(); got != 1 {
		t.Errorf("Sweep() = %d, want 1", got)
	}

	m.StartCleanup(5 * time.Millisecond)
	deadline := time.Now().Add(time.Second)
	for cc.n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()
	m.Stop()

	if cc.n.Load() < 3 {
		t.Errorf("cleaner ran %d times", cc.n.Load())
	}
}
