package dict

import "testing"

func TestDictBasicOps(t *testing.T) {
	d := New[int32, string](HashInt32)

	d.Append(1, "one")
	d.Append(2, "two")

	if v, ok := d.TryGet(1); !ok || v != "one" {
		t.Fatalf("TryGet(1) = %q, %v; want one, true", v, ok)
	}
	if v, ok := d.TryGet(3); ok {
		t.Fatalf("TryGet(3) = %q, true; want absent", v)
	}
	if d.Count() != 2 {
		t.Fatalf("Count() = %d; want 2", d.Count())
	}

	if !d.Remove(1) {
		t.Fatalf("Remove(1) = false; want true")
	}
	if d.Remove(1) {
		t.Fatalf("second Remove(1) = true; want false (already gone)")
	}
	if d.Count() != 1 {
		t.Fatalf("Count() after remove = %d; want 1", d.Count())
	}
}

// TestDictGrowRehash inserts enough entries to force several power-of-two
// bucket resizes and checks every key survives each rehash.
func TestDictGrowRehash(t *testing.T) {
	d := New[int32, int32](HashInt32)
	const n = 5000

	for i := int32(0); i < n; i++ {
		d.Append(i, i*i)
	}
	if d.Count() != n {
		t.Fatalf("Count() = %d; want %d", d.Count(), n)
	}
	for i := int32(0); i < n; i++ {
		v, ok := d.TryGet(i)
		if !ok || v != i*i {
			t.Fatalf("TryGet(%d) = %d, %v; want %d, true", i, v, ok, i*i)
		}
	}

	stats := d.ComputeStats()
	if stats.Buckets&(stats.Buckets-1) != 0 {
		t.Fatalf("bucket count %d is not a power of two", stats.Buckets)
	}
	if stats.Count != n {
		t.Fatalf("stats.Count = %d; want %d", stats.Count, n)
	}
}

// TestDictShrinkAfterRemoval removes most entries and checks the table
// shrinks back down rather than staying oversized forever, and that the
// surviving entries are still reachable afterwards.
func TestDictShrinkAfterRemoval(t *testing.T) {
	d := New[int32, int32](HashInt32)
	const n = 2000

	for i := int32(0); i < n; i++ {
		d.Append(i, i)
	}
	grown := d.ComputeStats().Buckets

	for i := int32(0); i < n-10; i++ {
		d.Remove(i)
	}
	shrunk := d.ComputeStats().Buckets
	if shrunk >= grown {
		t.Fatalf("bucket count did not shrink: was %d, now %d", grown, shrunk)
	}

	for i := int32(n - 10); i < n; i++ {
		if v, ok := d.TryGet(i); !ok || v != i {
			t.Fatalf("TryGet(%d) = %d, %v; want %d, true", i, v, ok, i)
		}
	}
}

func TestDictGetFirstOnEmpty(t *testing.T) {
	d := New[int32, string](HashInt32)
	if _, _, ok := d.GetFirst(); ok {
		t.Fatalf("GetFirst() on empty dict reported a value")
	}
}

func TestSymbolDictRoundTrip(t *testing.T) {
	sd := NewSymbolDict[string]()
	sd.Append(7, "seven")
	if v, ok := sd.TryGet(7); !ok || v != "seven" {
		t.Fatalf("TryGet(7) = %q, %v; want seven, true", v, ok)
	}
}
