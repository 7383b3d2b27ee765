package app

import (
	"context"
	"fmt"

	"hotel_listing/internal/domain"
)

// Assembler builds one Hotel from its primary record and decides whether the
// filter keeps it.
type Assembler struct {
	attrs   domain.AttributeStore
	reviews domain.ReviewAggregator
	rooms   domain.RoomFinder
	inst    Instrument
}

func NewAssembler(a domain.AttributeStore, r domain.ReviewAggregator, rf domain.RoomFinder, in Instrument) *Assembler {
	if in == nil {
		in = nopInstrument{}
	}
	return &Assembler{attrs: a, reviews: r, rooms: rf, inst: in}
}

// scoped returns an assembler whose attribute store lives for one listing call.
func (a *Assembler) scoped() *Assembler {
	s, ok := a.attrs.(domain.ScopedAttributeStore)
	if !ok {
		return a
	}
	cp := *a
	cp.attrs = s.Scope()
	return &cp
}

func (a *Assembler) Assemble(ctx context.Context, rec domain.PrimaryRecord, f domain.FilterArgs) Outcome {
	h := domain.Hotel{ID: rec.ID, Name: rec.DisplayName}

	bag, err := timed(ctx, a.inst, StepLoadAttributes, func(ctx context.Context) (domain.AttributeBag, error) {
		return a.attrs.Attributes(ctx, rec.ID, domain.HotelAttributeKeys)
	})
	if err != nil {
		return failed(rec.ID, fmt.Errorf("load attributes: %w", err))
	}
	h.ApplyAttributes(bag)

	stats, err := timed(ctx, a.inst, StepLoadReviews, func(ctx context.Context) (domain.ReviewStats, error) {
		return a.reviews.ReviewStats(ctx, rec.ID)
	})
	if err != nil {
		return failed(rec.ID, fmt.Errorf("load reviews: %w", err))
	}
	h.Rating, h.RatingCount = stats.Rating, stats.Count

	var found bool
	room, err := timed(ctx, a.inst, StepFindCheapestRoom, func(ctx context.Context) (domain.Room, error) {
		r, hit, err := a.rooms.FindCheapestRoom(ctx, rec.ID, f)
		found = hit
		return r, err
	})
	if err != nil {
		return failed(rec.ID, fmt.Errorf("find cheapest room: %w", err))
	}
	if !found {
		return excluded(rec.ID, ReasonNoMatchingRoom)
	}
	h.CheapestRoom = room

	if f.HasRadius() {
		d := domain.DistanceKm(*f.Lat, *f.Lng, h.GeoLat, h.GeoLng)
		h.Distance = &d
		if d > *f.Distance {
			return excluded(rec.ID, ReasonOutsideRadius)
		}
	}
	return ok(h)
}
