package domain

import "math"

// Room meta keys stored against a room post.
const (
	RoomAttrPrice      = "price"
	RoomAttrSurface    = "surface"
	RoomAttrBedRooms   = "bedrooms_count"
	RoomAttrBathRooms  = "bathrooms_count"
	RoomAttrType       = "type"
	RoomAttrCoverImage = "coverImage"
)

var RoomAttributeKeys = []string{
	RoomAttrPrice, RoomAttrSurface, RoomAttrBedRooms, RoomAttrBathRooms, RoomAttrType, RoomAttrCoverImage,
}

type Room struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	Surface       int     `json:"surface"`
	BedRooms      int     `json:"bedRoomsCount"`
	BathRooms     int     `json:"bathRoomsCount"`
	Type          string  `json:"type"`
	CoverImageURL *string `json:"coverImageUrl"`
}

// NewRoom builds a room from its post row and meta bag. Numeric values that
// do not parse are read as zero.
func NewRoom(id int64, title string, bag AttributeBag) Room {
	r := Room{
		ID:            id,
		Title:         title,
		Price:         bag.Float(RoomAttrPrice),
		Surface:       int(bag.Float(RoomAttrSurface)),
		BedRooms:      int(bag.Float(RoomAttrBedRooms)),
		BathRooms:     int(bag.Float(RoomAttrBathRooms)),
		CoverImageURL: bag.Get(RoomAttrCoverImage),
	}
	if t := bag.Get(RoomAttrType); t != nil {
		r.Type = *t
	}
	return r
}

// PriceKey is the value the room is compared on: its price truncated toward
// zero. It stays a float so huge prices cannot overflow.
func (r Room) PriceKey() float64 { return math.Trunc(r.Price) }

// CheapestRoom returns the lowest priced room of rooms matching f. Ties keep
// the first room encountered.
func CheapestRoom(rooms []Room, f FilterArgs) (Room, bool) {
	var (
		best  Room
		found bool
	)
	for _, r := range rooms {
		if !f.MatchesRoom(r) {
			continue
		}
		if !found || r.PriceKey() < best.PriceKey() {
			best, found = r, true
		}
	}
	return best, found
}
