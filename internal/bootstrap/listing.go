// Package bootstrap builds the listing pipeline from configuration. It is
// shared by the API and the listing CLI.
package bootstrap

import (
	"fmt"
	"time"

	"hotel_listing/internal/app"
	"hotel_listing/internal/domain"
	"hotel_listing/internal/storage/sqlstore"
)

// Room strategy names.
const (
	RoomsNaive = "naive"
	RoomsScan  = "scan"
)

// Strategies selects the store access pattern of a pipeline.
type Strategies struct {
	Attributes string
	Rooms      string
	BatchWait  time.Duration
}

func (s Strategies) String() string { return s.Attributes + "/" + s.Rooms }

// AllStrategies lists every attribute and room strategy combination.
func AllStrategies(batchWait time.Duration) []Strategies {
	var out []Strategies
	for _, a := range []string{sqlstore.StrategyNaive, sqlstore.StrategyEntity, sqlstore.StrategyBatch} {
		for _, r := range []string{RoomsNaive, RoomsScan} {
			out = append(out, Strategies{Attributes: a, Rooms: r, BatchWait: batchWait})
		}
	}
	return out
}

func RoomFinder(s *sqlstore.Store, name string) (domain.RoomFinder, error) {
	switch name {
	case RoomsNaive:
		return app.NewDetailRoomFinder(s, s), nil
	case RoomsScan, "":
		return sqlstore.NewScanRoomFinder(s), nil
	}
	return nil, fmt.Errorf("unknown room strategy %q", name)
}

// NewListing wires a ListingService over s.
func NewListing(s *sqlstore.Store, st Strategies, in app.Instrument, opts ...app.ListingOption) (*app.ListingService, error) {
	attrs, err := sqlstore.NewAttributeStore(s, st.Attributes, st.BatchWait)
	if err != nil {
		return nil, err
	}
	rooms, err := RoomFinder(s, st.Rooms)
	if err != nil {
		return nil, err
	}
	return app.NewListingService(s, app.NewAssembler(attrs, s, rooms, in), opts...), nil
}
