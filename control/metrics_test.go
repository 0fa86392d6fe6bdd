package control

import "testing"

func TestMetricsRegistrySnapshot(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Set("reactor.run_once_count", 3)
	mr.Set("reactor.events_per_poll", 2)

	snap := mr.GetSnapshot()
	if snap["reactor.run_once_count"] != 3 {
		t.Fatalf("run_once_count = %v, want 3", snap["reactor.run_once_count"])
	}
	if snap["reactor.events_per_poll"] != 2 {
		t.Fatalf("events_per_poll = %v, want 2", snap["reactor.events_per_poll"])
	}
}
