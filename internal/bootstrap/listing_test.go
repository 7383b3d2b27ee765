package bootstrap_test

import (
	"testing"
	"time"

	"hotel_listing/internal/bootstrap"
	"hotel_listing/internal/storage/sqlstore"
)

func TestAllStrategies(t *testing.T) {
	all := bootstrap.AllStrategies(time.Millisecond)
	if len(all) != 6 {
		t.Fatalf("expected 6 combinations, got %d", len(all))
	}
	seen := map[string]bool{}
	for _, s := range all {
		seen[s.String()] = true
	}
	for _, want := range []string{"naive/naive", "entity/scan", "batch/naive", "batch/scan"} {
		if !seen[want] {
			t.Fatalf("missing %s in %v", want, seen)
		}
	}
}

func TestNewListing_RejectsUnknownStrategies(t *testing.T) {
	s := sqlstore.New(nil)
	if _, err := bootstrap.NewListing(s, bootstrap.Strategies{Attributes: "magic"}, nil); err == nil {
		t.Fatalf("expected an error for an unknown attribute strategy")
	}
	if _, err := bootstrap.NewListing(s, bootstrap.Strategies{Rooms: "index"}, nil); err == nil {
		t.Fatalf("expected an error for an unknown room strategy")
	}
	if _, err := bootstrap.NewListing(s, bootstrap.Strategies{}, nil); err != nil {
		t.Fatalf("defaults: %v", err)
	}
}
