package consumer

import (
	"fmt"
	"testing"
)

func TestSeenSetRecord(t *testing.T) {
	s := newSeenSet(100)

	if !s.Record("a") {
		t.Fatal("first record of id should return true")
	}
	if s.Record("a") {
		t.Fatal("second record of same id should return false")
	}
	if !s.Record("b") {
		t.Fatal("record of new id should return true")
	}
}

func TestSeenSetEmptyIDAlwaysPasses(t *testing.T) {
	s := newSeenSet(100)
	if !s.Record("") || !s.Record("") {
		t.Fatal("empty ids cannot be deduplicated and must pass through")
	}
}

func TestSeenSetEvictsOldest(t *testing.T) {
	s := newSeenSet(3)
	for i := 0; i < 3; i++ {
		s.Record(fmt.Sprintf("id-%d", i))
	}

	// Overflow evicts id-0; a redelivery of id-0 is no longer detected.
	s.Record("id-3")
	if !s.Record("id-0") {
		t.Fatal("evicted id should be recordable again")
	}
	if s.Record("id-3") {
		t.Fatal("recent id should still be deduplicated")
	}
}
