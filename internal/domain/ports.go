package domain

import "context"

// HotelSource reads primary records in a stable order. A non-empty search
// keeps only records whose display name contains it, case-insensitively.
type HotelSource interface {
	ListRecords(ctx context.Context, search string) ([]PrimaryRecord, error)
}

// AttributeStore reads per-entity attributes. Keys that are not stored come
// back as nil values, never as an error.
type AttributeStore interface {
	Attributes(ctx context.Context, entityID int64, keys []string) (AttributeBag, error)
}

// ScopedAttributeStore is implemented by stores that keep state for the
// lifetime of one listing call. Scope returns the store to use for that call.
type ScopedAttributeStore interface {
	AttributeStore
	Scope() AttributeStore
}

type ReviewAggregator interface {
	ReviewStats(ctx context.Context, hotelID int64) (ReviewStats, error)
}

// RoomFinder returns the cheapest room of ownerID matching f. found is false
// when no room matches; err is reserved for store failures.
type RoomFinder interface {
	FindCheapestRoom(ctx context.Context, ownerID int64, f FilterArgs) (room Room, found bool, err error)
}

// RoomIndex lists the room ids owned by a hotel in ascending order.
type RoomIndex interface {
	RoomIDs(ctx context.Context, ownerID int64) ([]int64, error)
}

type RoomDetailLoader interface {
	LoadRoom(ctx context.Context, roomID int64) (Room, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
