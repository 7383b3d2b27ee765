package app

import "hotel_listing/internal/domain"

type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeExcluded
	OutcomeFailed
)

// ExclusionReason says why a hotel was filtered out of a listing.
type ExclusionReason string

const (
	ReasonNoMatchingRoom ExclusionReason = "no_matching_room"
	ReasonOutsideRadius  ExclusionReason = "outside_radius"
)

// Outcome is the result of assembling one hotel: a hotel, an exclusion, or a
// failure. Only failures carry an error.
type Outcome struct {
	Kind    OutcomeKind
	HotelID int64
	Hotel   domain.Hotel
	Reason  ExclusionReason
	Err     error
}

func ok(h domain.Hotel) Outcome { return Outcome{Kind: OutcomeOK, HotelID: h.ID, Hotel: h} }

func excluded(id int64, r ExclusionReason) Outcome {
	return Outcome{Kind: OutcomeExcluded, HotelID: id, Reason: r}
}

func failed(id int64, err error) Outcome { return Outcome{Kind: OutcomeFailed, HotelID: id, Err: err} }

// Label is ok, failed, or the exclusion reason.
func (o Outcome) Label() string {
	switch o.Kind {
	case OutcomeOK:
		return "ok"
	case OutcomeExcluded:
		return string(o.Reason)
	default:
		return "failed"
	}
}
