package locks

import (
	"sync"
	"testing"
)

func TestKeyedMutualExclusion(t *testing.T) {
	k := NewKeyed()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.Lock("asset-1")
			counter++
			k.Unlock("asset-1")
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("expected 50 increments, got %d", counter)
	}
	if len(k.locks) != 0 {
		t.Fatalf("expected lock table drained, got %d entries", len(k.locks))
	}
}

func TestKeyedIndependentKeys(t *testing.T) {
	k := NewKeyed()
	k.Lock("asset-1")

	done := make(chan struct{})
	go func() {
		k.Lock("asset-2")
		k.Unlock("asset-2")
		close(done)
	}()

	// A different key must not block behind asset-1.
	<-done
	k.Unlock("asset-1")
}
