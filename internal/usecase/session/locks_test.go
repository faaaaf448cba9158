package session

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	k := newKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("s1")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
	if k.size() != 0 {
		t.Errorf("size() = %d, want 0", k.size())
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	k := newKeyedMutex()
	u1 := k.Lock("a")
	u2 := k.Lock("b")
	if k.size() != 2 {
		t.Errorf("size() = %d, want 2", k.size())
	}
	u1()
	u2()
}
