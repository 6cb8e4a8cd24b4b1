package core

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestClassLockDedupesConcurrentCalls verifies invariant 8: concurrent
// lookups of the same name share one completer's result instead of each
// running fn.
func TestClassLockDedupesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var lock classLock
	var calls atomic.Int32
	start := make(chan struct{})

	const n = 20
	var wg sync.WaitGroup
	results := make([]*LoadedClass, n)
	wg.Add(n)
	for i := range n {
		go func(i int) {
			defer wg.Done()
			<-start
			lc, err := lock.withLock("dep.Foo", func() (*LoadedClass, error) {
				calls.Add(1)
				return &LoadedClass{Name: "dep.Foo"}, nil
			})
			if err != nil {
				t.Errorf("withLock: %v", err)
				return
			}
			results[i] = lc
		}(i)
	}
	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fn called %d times, want 1", got)
	}
	for i, lc := range results {
		if lc != results[0] {
			t.Errorf("result[%d] = %p, want shared pointer %p", i, lc, results[0])
		}
	}
}

// TestClassLockDistinctNamesDoNotBlock verifies that a stripe for one name
// does not serialize lookups of another.
func TestClassLockDistinctNamesDoNotBlock(t *testing.T) {
	t.Parallel()

	var lock classLock
	blockA := make(chan struct{})
	doneB := make(chan struct{})

	go func() {
		_, _ = lock.withLock("dep.A", func() (*LoadedClass, error) {
			<-blockA
			return &LoadedClass{Name: "dep.A"}, nil
		})
	}()

	go func() {
		_, _ = lock.withLock("dep.B", func() (*LoadedClass, error) {
			return &LoadedClass{Name: "dep.B"}, nil
		})
		close(doneB)
	}()

	<-doneB // must not deadlock waiting on dep.A's in-flight call
	close(blockA)
}
