package pool_test

import (
	"testing"

	"github.com/momentics/foreignbuf/pool"
)

func TestRingPushPopOrder(t *testing.T) {
	r := pool.NewRing[int](4)
	for i := 0; i < 4; i++ {
		if !r.Push(i) {
			t.Fatalf("push %d failed", i)
		}
	}
	if r.Push(99) {
		t.Error("push on full ring must fail")
	}
	for i := 0; i < 4; i++ {
		v, ok := r.Pop()
		if !ok || v != i {
			t.Fatalf("pop = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := r.Pop(); ok {
		t.Error("pop on empty ring must fail")
	}
}

func TestRingCapacityRounding(t *testing.T) {
	r := pool.NewRing[byte](5)
	if r.Cap() != 8 {
		t.Errorf("Cap = %d, want next power of two 8", r.Cap())
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestCollectorEvictionAndDrain(t *testing.T) {
	c := pool.NewCollector(2)
	_, ok := c.Add(pool.Frame{Seq: 1})
	if ok {
		t.Error("no eviction expected below capacity")
	}
	c.Add(pool.Frame{Seq: 2})
	evicted, ok := c.Add(pool.Frame{Seq: 3})
	if !ok || evicted.Seq != 1 {
		t.Errorf("evicted = (%+v, %v), want oldest frame", evicted, ok)
	}

	out := c.Drain(0)
	if len(out) != 2 || out[0].Seq != 2 || out[1].Seq != 3 {
		t.Errorf("drain = %+v, want frames 2 and 3 in order", out)
	}
	if c.Len() != 0 {
		t.Errorf("Len after drain = %d, want 0", c.Len())
	}
}
