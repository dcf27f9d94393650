package idgen

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDAllocatorIssuesUniqueIDs(t *testing.T) {
	alloc := UUIDAllocator{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := alloc.NextID(context.Background())
		if err != nil {
			t.Fatalf("next id failed: %v", err)
		}
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("expected uuid, got %q: %v", id, err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
