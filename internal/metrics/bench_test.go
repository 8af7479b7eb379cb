package metrics

import "testing"

// BenchmarkCollector_PollReturned measures the per-poll overhead
// (atomic operations).
func BenchmarkCollector_PollReturned(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.PollReturned(1)
	}
}

// BenchmarkCollector_Wrote measures byte-counter overhead.
func BenchmarkCollector_Wrote(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Wrote(37)
	}
}

// BenchmarkCollector_Snapshot measures the cost of taking a snapshot.
func BenchmarkCollector_Snapshot(b *testing.B) {
	c := New()
	c.PollReturned(2)
	c.Wrote(1024)
	c.RecordError("test")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Snapshot()
	}
}
