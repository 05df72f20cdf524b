package runstate

import (
	"errors"
	"sync"
	"testing"
)

func TestCounterConcurrentIncrement(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	if got := c.Value(); got != 8000 {
		t.Fatalf("counter = %d, want 8000", got)
	}
}

func TestCollectorConcurrentAppend(t *testing.T) {
	var c Collector
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Append(Failure{RecordID: "r", Err: errors.New("boom")})
			}
		}()
	}
	wg.Wait()
	if got := c.Len(); got != 800 {
		t.Fatalf("collector = %d, want 800", got)
	}
	for _, f := range c.List() {
		if f.At.IsZero() {
			t.Fatal("failure timestamp not set")
		}
	}
}
