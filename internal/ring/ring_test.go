package ring

import "testing"

func TestEnqueueDequeueOrder(t *testing.T) {
	b := NewBuffer[int](3)
	if !b.Enqueue(1) || !b.Enqueue(2) || !b.Enqueue(3) {
		t.Fatal("expected three enqueues to succeed")
	}
	if b.Enqueue(4) {
		t.Fatal("expected enqueue into full buffer to fail")
	}
	for _, want := range []int{1, 2, 3} {
		got, ok := b.Dequeue()
		if !ok || got != want {
			t.Fatalf("Dequeue() = %d, %v, want %d, true", got, ok, want)
		}
	}
	if _, ok := b.Dequeue(); ok {
		t.Fatal("expected Dequeue on empty buffer to fail")
	}
}

func TestWrapsAroundAfterPartialDrain(t *testing.T) {
	b := NewBuffer[int](2)
	b.Enqueue(1)
	b.Enqueue(2)
	b.Dequeue()
	b.Enqueue(3)
	v, _ := b.Dequeue()
	if v != 2 {
		t.Fatalf("got %d, want 2", v)
	}
	v, _ = b.Dequeue()
	if v != 3 {
		t.Fatalf("got %d, want 3", v)
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	b := NewBuffer[string](1)
	b.Enqueue("a")
	v, ok := b.Peek()
	if !ok || v != "a" {
		t.Fatalf("Peek() = %q, %v", v, ok)
	}
	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (peek must not consume)", b.Len())
	}
}
